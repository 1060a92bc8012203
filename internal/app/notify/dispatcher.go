package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"francoggm/vnpay-go-redis/internal/logging"
	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/models"
)

type Dispatcher struct {
	mu         sync.RWMutex
	processors []Processor
	logger     *slog.Logger
}

func NewDispatcher(logger *slog.Logger, processors ...Processor) *Dispatcher {
	return &Dispatcher{
		processors: processors,
		logger:     logger,
	}
}

func (d *Dispatcher) Register(processor Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.processors = append(d.processors, processor)
}

// Match returns the processors interested in txType, in registration order.
func (d *Dispatcher) Match(txType string) []Processor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var matched []Processor
	for _, processor := range d.processors {
		if filter := processor.Type(); filter == "" || filter == txType {
			matched = append(matched, processor)
		}
	}

	return matched
}

func (d *Dispatcher) DispatchReturnURL(ctx context.Context, txType string, response *models.PaymentResponse) error {
	return d.dispatch(ctx, models.FlowReturnURL, txType, response, Processor.ProcessReturnURL)
}

func (d *Dispatcher) DispatchIPN(ctx context.Context, txType string, response *models.PaymentResponse) error {
	return d.dispatch(ctx, models.FlowIPN, txType, response, Processor.ProcessIPN)
}

type handleFunc func(Processor, context.Context, *models.PaymentResponse) error

// dispatch stops at the first failing processor.
func (d *Dispatcher) dispatch(ctx context.Context, flow, txType string, response *models.PaymentResponse, handle handleFunc) error {
	ctx = withTxType(ctx, txType)

	for _, processor := range d.Match(txType) {
		if err := run(ctx, processor, response, handle); err != nil {
			metrics.HookError(flow)
			d.logger.ErrorContext(ctx, "Error processing callback",
				slog.String("type", txType),
				slog.String("processor", fmt.Sprintf("%T", processor)),
				"error", err,
			)
			return err
		}
	}

	return nil
}

func run(ctx context.Context, processor Processor, response *models.PaymentResponse, handle handleFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panicked: %v", r)
		}
	}()

	return handle(processor, logging.AppendCtx(ctx, slog.String("processor", fmt.Sprintf("%T", processor))), response)
}
