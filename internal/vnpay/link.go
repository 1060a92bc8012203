package vnpay

import (
	"context"
	"log/slog"
	"strings"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var minorUnits = decimal.NewFromInt(100)

// CreatePaymentLink signs a payment request and returns the URL the buyer's
// browser is sent to. The merchant context needed by the callbacks is stored
// under the request code.
func (s *Service) CreatePaymentLink(ctx context.Context, txType string, req *models.PaymentRequest, redirect string, client models.ClientInfo) (string, error) {
	if err := s.opts.validate(); err != nil {
		return "", err
	}

	if req.Amount.IsNegative() {
		return "", ErrInvalidAmount
	}

	requestCode := req.RequestCode
	if requestCode == "" {
		requestCode = NewRequestCode()
	}

	now := s.now()

	params := NewParams()
	// Extras go first so the protocol fields below always win.
	for key, value := range req.VNPData {
		params.Set(FieldPrefix+key, value)
	}

	params.Set("vnp_Version", Version)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_CurrCode", s.opts.CurrCode)
	params.Set("vnp_CreateDate", s.timestamp(now))
	params.Set("vnp_TmnCode", s.opts.TmnCode)
	params.Set("vnp_Locale", s.opts.Locale)
	params.Set("vnp_OrderType", s.opts.OrderType)
	params.Set("vnp_ReturnUrl", strings.TrimRight(client.BaseURL, "/")+s.opts.ReturnPath)
	params.Set("vnp_ExpireDate", s.timestamp(now.Add(s.opts.ExpireAfter)))
	params.Set("vnp_TxnRef", requestCode)
	params.Set("vnp_OrderInfo", req.OrderCode)
	params.Set("vnp_Amount", EncodeAmount(req.Amount))
	params.Set("vnp_IpAddr", client.IP)

	hash := Sign(s.opts.HashSecret, params.SigningString())
	link := strings.TrimRight(s.opts.APIURL, "/") + paymentPath + "?" + params.Encode() + "&" + secureHashKey + "=" + hash

	entry := models.CorrelationEntry{
		Type:        txType,
		RedirectURL: redirect,
		Data:        req.Data,
	}
	if err := s.store.Put(ctx, requestCode, flattenEntry(entry), s.opts.CorrelationTTL); err != nil {
		return "", errors.Wrapf(err, "vnpay: store correlation for %s", requestCode)
	}

	s.logger.InfoContext(ctx, "Payment link created",
		slog.String("requestCode", requestCode),
		slog.String("orderCode", req.OrderCode),
		slog.String("type", txType),
	)

	return link, nil
}

// EncodeAmount scales an amount to the gateway's minor units.
func EncodeAmount(amount decimal.Decimal) string {
	return amount.Mul(minorUnits).Round(0).StringFixed(0)
}

// DecodeAmount reverses EncodeAmount. Unparseable input decodes to zero.
func DecodeAmount(value string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}

	return amount.Div(minorUnits)
}

func flattenEntry(entry models.CorrelationEntry) map[string]string {
	fields := make(map[string]string, len(entry.Data)+2)
	for key, value := range entry.Data {
		fields[DataPrefix+key] = value
	}
	fields[dataTypeKey] = entry.Type
	fields[dataReturnURLKey] = entry.RedirectURL

	return fields
}

func unflattenEntry(fields map[string]string) models.CorrelationEntry {
	entry := models.CorrelationEntry{
		Type:        fields[dataTypeKey],
		RedirectURL: fields[dataReturnURLKey],
		Data:        make(map[string]string),
	}

	for key, value := range fields {
		if key == dataTypeKey || key == dataReturnURLKey {
			continue
		}
		if name, ok := strings.CutPrefix(key, DataPrefix); ok {
			entry.Data[name] = value
		}
	}

	return entry
}
