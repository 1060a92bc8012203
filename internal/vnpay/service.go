package vnpay

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

const (
	Version = "2.1.0"

	FieldPrefix = "vnp_"
	DataPrefix  = "user_"

	dataTypeKey      = DataPrefix + "Type"
	dataReturnURLKey = DataPrefix + "returnUrl"

	secureHashKey     = "vnp_SecureHash"
	secureHashTypeKey = "vnp_SecureHashType"

	successCode = "00"

	timestampLayout = "20060102150405"

	paymentPath  = "/paymentv2/vpcpay.html"
	merchantPath = "/merchant_webapi/api/transaction"
)

// CorrelationStore keeps the merchant context of a payment link until the
// gateway calls back. Entries expire by TTL and are never consumed by reads.
type CorrelationStore interface {
	Put(ctx context.Context, requestCode string, fields map[string]string, ttl time.Duration) error
	// Fetch returns nil fields and no error when the entry is absent or expired.
	Fetch(ctx context.Context, requestCode string) (map[string]string, error)
}

type Options struct {
	APIURL         string
	TmnCode        string
	HashSecret     string
	ReturnPath     string
	Locale         string
	CurrCode       string
	OrderType      string
	ExpireAfter    time.Duration
	CorrelationTTL time.Duration
	QueryTimeout   time.Duration
	Location       *time.Location
}

func (o Options) validate() error {
	switch {
	case o.APIURL == "":
		return errors.Wrap(ErrConfiguration, "api url")
	case o.TmnCode == "":
		return errors.Wrap(ErrConfiguration, "tmn code")
	case o.HashSecret == "":
		return errors.Wrap(ErrConfiguration, "hash secret")
	}

	return nil
}

type Service struct {
	opts   Options
	store  CorrelationStore
	client *QueryClient
	logger *slog.Logger

	now          func() time.Time
	newRequestID func() string
}

func NewService(opts Options, store CorrelationStore, client *QueryClient, logger *slog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CorrelationTTL <= 0 {
		opts.CorrelationTTL = 10 * time.Minute
	}
	if opts.ExpireAfter <= 0 {
		opts.ExpireAfter = 12 * time.Hour
	}
	if client == nil {
		client = NewQueryClient(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		opts:         opts,
		store:        store,
		client:       client,
		logger:       logger,
		now:          time.Now,
		newRequestID: newRequestID,
	}
}

func (s *Service) timestamp(t time.Time) string {
	return t.In(s.opts.Location).Format(timestampLayout)
}

// ParseTimestamp reads a gateway yyyyMMddHHmmss value in the gateway time zone.
func (s *Service) ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, value, s.opts.Location)
}

// outcome applies the tri-state rule shared by callbacks and QueryDR replies.
func outcome(validSignature bool, responseCode, transactionStatus string) *bool {
	if !validSignature {
		return nil
	}

	result := responseCode == successCode && transactionStatus == successCode
	return &result
}
