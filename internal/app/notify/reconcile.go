package notify

import (
	"context"
	"log/slog"
	"time"

	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/models"
)

// Reconciler queues a QueryDR for every response whose signature could not
// be verified. It never fails the callback.
type Reconciler struct {
	Base
	eventsCh       chan any
	parseTimestamp func(string) (time.Time, error)
	logger         *slog.Logger
}

func NewReconciler(eventsCh chan any, parseTimestamp func(string) (time.Time, error), logger *slog.Logger) *Reconciler {
	return &Reconciler{
		eventsCh:       eventsCh,
		parseTimestamp: parseTimestamp,
		logger:         logger,
	}
}

func (r *Reconciler) ProcessReturnURL(ctx context.Context, response *models.PaymentResponse) error {
	r.enqueue(ctx, models.FlowReturnURL, response)
	return nil
}

func (r *Reconciler) ProcessIPN(ctx context.Context, response *models.PaymentResponse) error {
	r.enqueue(ctx, models.FlowIPN, response)
	return nil
}

func (r *Reconciler) enqueue(ctx context.Context, flow string, response *models.PaymentResponse) {
	if response.Result != nil || response.RequestCode == "" {
		return
	}

	transactionDate, err := r.parseTimestamp(response.VNPData["PayDate"])
	if err != nil {
		r.logger.WarnContext(ctx, "Cannot reconcile response without pay date", slog.String("requestCode", response.RequestCode))
		metrics.Reconcile("skipped")
		return
	}

	event := &models.ReconcileEvent{
		Flow:            flow,
		RequestCode:     response.RequestCode,
		OrderCode:       response.OrderCode,
		TransactionDate: transactionDate,
	}

	select {
	case r.eventsCh <- event:
		metrics.Reconcile("queued")
	default:
		r.logger.WarnContext(ctx, "Reconcile queue full, dropping event", slog.String("requestCode", response.RequestCode))
		metrics.Reconcile("dropped")
	}
}
