package notify

import (
	"context"
	"fmt"
	"log/slog"

	"francoggm/vnpay-go-redis/internal/models"
)

type ResponseStore interface {
	SaveResponse(ctx context.Context, flow string, response *models.PaymentResponse) error
	GetResponse(ctx context.Context, flow, requestCode string) (*models.PaymentResponse, error)
}

// Recorder keeps the last response of each flow so it can be inspected
// through the payments endpoint.
type Recorder struct {
	Base
	store  ResponseStore
	logger *slog.Logger
}

func NewRecorder(store ResponseStore, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
	}
}

func (r *Recorder) ProcessReturnURL(ctx context.Context, response *models.PaymentResponse) error {
	return r.record(ctx, models.FlowReturnURL, response)
}

func (r *Recorder) ProcessIPN(ctx context.Context, response *models.PaymentResponse) error {
	return r.record(ctx, models.FlowIPN, response)
}

func (r *Recorder) record(ctx context.Context, flow string, response *models.PaymentResponse) error {
	r.logger.InfoContext(ctx, "Recording callback response",
		slog.String("flow", flow),
		slog.String("requestCode", response.RequestCode),
		slog.String("outcome", response.Outcome()),
	)

	if err := r.store.SaveResponse(ctx, flow, response); err != nil {
		return fmt.Errorf("record %s response: %w", flow, err)
	}

	return nil
}

// Responses returns the recorded ReturnURL and IPN responses for a request
// code. Either may be nil when that callback never arrived.
func (r *Recorder) Responses(ctx context.Context, requestCode string) (returnURL, ipn *models.PaymentResponse, err error) {
	returnURL, err = r.store.GetResponse(ctx, models.FlowReturnURL, requestCode)
	if err != nil {
		return nil, nil, err
	}

	ipn, err = r.store.GetResponse(ctx, models.FlowIPN, requestCode)
	if err != nil {
		return nil, nil, err
	}

	return returnURL, ipn, nil
}
