package vnpay

import (
	"log/slog"
	"net/url"
	"testing"
	"time"

	"francoggm/vnpay-go-redis/internal/app/storage"
)

const (
	testSecret  = "SECRETKEY"
	testTmnCode = "TMN00001"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		APIURL:         "https://sandbox.vnpayment.vn",
		TmnCode:        testTmnCode,
		HashSecret:     testSecret,
		ReturnPath:     "/vnpay/return",
		Locale:         "vn",
		CurrCode:       "VND",
		OrderType:      "other",
		ExpireAfter:    12 * time.Hour,
		CorrelationTTL: 10 * time.Minute,
		Location:       time.UTC,
	}
}

func newTestService(t *testing.T, opts Options, client *QueryClient) (*Service, *storage.MemoryCorrelationStore) {
	t.Helper()

	store := storage.NewMemoryCorrelationStore()
	service := NewService(opts, store, client, slog.Default())
	service.now = func() time.Time { return testNow }
	service.newRequestID = func() string { return "req-0001" }

	return service, store
}

// signedQuery builds a callback query string signed the way the gateway does.
func signedQuery(secret string, fields map[string]string) url.Values {
	params := NewParams()
	query := url.Values{}
	for key, value := range fields {
		params.Set(key, value)
		query.Set(key, value)
	}

	query.Set("vnp_SecureHashType", "HmacSHA512")
	query.Set("vnp_SecureHash", Sign(secret, params.SigningString()))

	return query
}
