package vnpay

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConfiguration    = errors.New("vnpay: missing configuration")
	ErrInvalidAmount    = errors.New("vnpay: amount must not be negative")
	ErrMissingSignature = errors.New("vnpay: reply has no secure hash")
)

// TransportError is returned when the gateway answers a QueryDR call with a
// non-success HTTP status.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("vnpay: querydr failed with status code: %d", e.StatusCode)
}
