package notify

import (
	"context"

	"francoggm/vnpay-go-redis/internal/models"
)

// Processor is a notification hook fed with the unified response of each
// callback flow. Type filters the transaction types the hook handles; an
// empty Type matches every transaction.
type Processor interface {
	Type() string
	ProcessReturnURL(ctx context.Context, response *models.PaymentResponse) error
	ProcessIPN(ctx context.Context, response *models.PaymentResponse) error
}

// Base implements Processor with no-ops. Embed it and override what you need.
type Base struct{}

func (Base) Type() string { return "" }

func (Base) ProcessReturnURL(context.Context, *models.PaymentResponse) error { return nil }

func (Base) ProcessIPN(context.Context, *models.PaymentResponse) error { return nil }

type txTypeKey struct{}

func withTxType(ctx context.Context, txType string) context.Context {
	return context.WithValue(ctx, txTypeKey{}, txType)
}

// TxType returns the transaction type of the callback being dispatched.
func TxType(ctx context.Context) string {
	txType, _ := ctx.Value(txTypeKey{}).(string)
	return txType
}
