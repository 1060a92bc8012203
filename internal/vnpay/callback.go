package vnpay

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/pkg/errors"
)

type CallbackResult struct {
	Type        string
	Response    *models.PaymentResponse
	RedirectURL string
}

// ProcessCallback verifies the gateway fields of a ReturnURL or IPN call and
// joins them with the merchant context stored when the link was created.
func (s *Service) ProcessCallback(ctx context.Context, query url.Values) (*CallbackResult, error) {
	params := NewParams()
	for key := range query {
		if strings.HasPrefix(key, FieldPrefix) {
			params.Set(key, query.Get(key))
		}
	}

	hash := params.Value(secureHashKey)
	signed := params.Without(secureHashKey, secureHashTypeKey)
	valid := Validate(hash, s.opts.HashSecret, signed.SigningString())

	requestCode := params.Value("vnp_TxnRef")

	response := &models.PaymentResponse{
		Result:      outcome(valid, params.Value("vnp_ResponseCode"), params.Value("vnp_TransactionStatus")),
		RequestCode: requestCode,
		OrderCode:   params.Value("vnp_OrderInfo"),
		Amount:      DecodeAmount(params.Value("vnp_Amount")),
		VNPData:     params.StripPrefix(FieldPrefix),
	}

	if !valid {
		s.logger.WarnContext(ctx, "Invalid callback signature", slog.String("requestCode", requestCode))
	}

	var fields map[string]string
	if requestCode != "" {
		var err error
		fields, err = s.store.Fetch(ctx, requestCode)
		if err != nil {
			return nil, errors.Wrapf(err, "vnpay: fetch correlation for %s", requestCode)
		}
	}

	if fields == nil {
		s.logger.WarnContext(ctx, "No correlation entry for callback", slog.String("requestCode", requestCode))
	}

	entry := unflattenEntry(fields)
	response.Data = entry.Data

	return &CallbackResult{
		Type:        entry.Type,
		Response:    response,
		RedirectURL: entry.RedirectURL,
	}, nil
}
