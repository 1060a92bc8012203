package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"francoggm/vnpay-go-redis/internal/logging"
	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/models"
	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/shopspring/decimal"
)

type createPaymentRequest struct {
	Type        string            `json:"type"`
	RequestCode string            `json:"requestCode"`
	OrderCode   string            `json:"orderCode"`
	Amount      decimal.Decimal   `json:"amount"`
	VNPData     map[string]string `json:"vnpData"`
	Data        map[string]string `json:"data"`
	ReturnURL   string            `json:"returnUrl"`
}

type createPaymentResponse struct {
	RequestCode string `json:"requestCode"`
	URL         string `json:"url"`
}

func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var body createPaymentRequest
	if err := decodeBody(r, createPaymentLoader, &body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid payment request: %w", err))
		return
	}

	requestCode := body.RequestCode
	if requestCode == "" {
		requestCode = vnpay.NewRequestCode()
	}

	redirect := body.ReturnURL
	if redirect == "" {
		redirect = "/payments/" + url.PathEscape(requestCode)
	}

	ctx := logging.AppendCtx(r.Context(), slog.String("requestCode", requestCode))

	link, err := h.service.CreatePaymentLink(ctx, body.Type, &models.PaymentRequest{
		RequestCode: requestCode,
		OrderCode:   body.OrderCode,
		Amount:      body.Amount,
		VNPData:     body.VNPData,
		Data:        body.Data,
	}, redirect, h.clientInfo(r))
	if err != nil {
		metrics.LinksFailed.Inc()

		status := http.StatusInternalServerError
		if errors.Is(err, vnpay.ErrInvalidAmount) {
			status = http.StatusBadRequest
		}
		h.writeError(w, r, status, err)
		return
	}

	metrics.LinksCreated.Inc()

	if err := writeJSON(w, http.StatusCreated, createPaymentResponse{RequestCode: requestCode, URL: link}); err != nil {
		h.logger.ErrorContext(ctx, "Error encoding response", "error", err)
	}
}
