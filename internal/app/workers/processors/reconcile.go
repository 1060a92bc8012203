package processors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"francoggm/vnpay-go-redis/internal/logging"
	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/models"
	"francoggm/vnpay-go-redis/internal/vnpay"
)

type Querier interface {
	QueryDR(ctx context.Context, requestCode, orderCode string, transactionDate time.Time, clientIP string) (*models.QueryResult, error)
}

type ResponseSaver interface {
	SaveResponse(ctx context.Context, flow string, response *models.PaymentResponse) error
}

// ReconcileProcessor asks the gateway for the status of callbacks whose
// signature did not verify and records the answer. Each event is queried
// once.
type ReconcileProcessor struct {
	querier  Querier
	store    ResponseSaver
	clientIP string
	logger   *slog.Logger
}

func NewReconcileProcessor(querier Querier, store ResponseSaver, clientIP string, logger *slog.Logger) *ReconcileProcessor {
	return &ReconcileProcessor{
		querier:  querier,
		store:    store,
		clientIP: clientIP,
		logger:   logger,
	}
}

func (p *ReconcileProcessor) ProcessEvent(ctx context.Context, event any) error {
	reconcile, ok := event.(*models.ReconcileEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	ctx = logging.AppendCtx(ctx, slog.String("requestCode", reconcile.RequestCode))
	ctx = logging.AppendCtx(ctx, slog.String("flow", reconcile.Flow))

	startTime := time.Now()
	result, err := p.querier.QueryDR(ctx, reconcile.RequestCode, reconcile.OrderCode, reconcile.TransactionDate, p.clientIP)
	if err != nil {
		metrics.QueryDR("error", startTime)
		metrics.Reconcile("error")
		return fmt.Errorf("reconcile %s: %w", reconcile.RequestCode, err)
	}

	outcome := result.Outcome()
	metrics.QueryDR(outcome, startTime)
	metrics.Reconcile(outcome)

	p.logger.InfoContext(ctx, "Reconciled payment", slog.String("outcome", outcome))

	response := &models.PaymentResponse{
		Result:      result.Result,
		RequestCode: reconcile.RequestCode,
		OrderCode:   reconcile.OrderCode,
		Amount:      vnpay.DecodeAmount(result.VNPData["Amount"]),
		VNPData:     result.VNPData,
		Data:        map[string]string{},
	}

	return p.store.SaveResponse(ctx, models.FlowQueryDR, response)
}
