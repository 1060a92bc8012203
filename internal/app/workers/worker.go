package workers

import (
	"context"
	"log/slog"

	"francoggm/vnpay-go-redis/internal/app/workers/processors"
)

type worker struct {
	id              int
	eventsCh        chan any
	eventsProcessor processors.Processor
	logger          *slog.Logger
}

func newWorker(id int, eventsCh chan any, eventsProcessor processors.Processor, logger *slog.Logger) *worker {
	return &worker{
		id:              id,
		eventsCh:        eventsCh,
		eventsProcessor: eventsProcessor,
		logger:          logger.With(slog.Int("worker", id)),
	}
}

// start handles events until ctx is done or the channel is closed. Failed
// events are logged and dropped.
func (w *worker) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.eventsCh:
			if !ok {
				return
			}

			if err := w.eventsProcessor.ProcessEvent(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "Error processing event", "error", err)
			}
		}
	}
}
