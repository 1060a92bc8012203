package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	mu     sync.Mutex
	events []any
}

func (p *countingProcessor) ProcessEvent(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	if event == "fail" {
		return errors.New("boom")
	}
	return nil
}

func (p *countingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestOrchestrator_DrainsQueue(t *testing.T) {
	eventsCh := make(chan any, 10)
	processor := &countingProcessor{}

	orchestrator := NewOrchestrator(3, eventsCh, processor, slog.Default())
	orchestrator.StartWorkers(context.Background())

	for _, event := range []any{"a", "fail", "b", "c"} {
		eventsCh <- event
	}
	close(eventsCh)

	orchestrator.Wait()
	assert.Equal(t, 4, processor.count())
}

func TestOrchestrator_StopsOnCancel(t *testing.T) {
	eventsCh := make(chan any)
	orchestrator := NewOrchestrator(2, eventsCh, &countingProcessor{}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	orchestrator.StartWorkers(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		orchestrator.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}
