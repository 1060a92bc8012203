package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"francoggm/vnpay-go-redis/internal/logging"
	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/models"
	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/go-chi/chi/v5"
)

type paymentStatusResponse struct {
	ReturnURL  *models.PaymentResponse `json:"returnUrlResponse"`
	IPN        *models.PaymentResponse `json:"ipnResponse"`
	QueryDR    *models.QueryResult     `json:"querydr,omitempty"`
	QueryError string                  `json:"querydrError,omitempty"`
}

// GetPayment shows what the callbacks recorded for a request code, plus a
// live status query when the redirect carried a pay date.
func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ctx := logging.AppendCtx(r.Context(), slog.String("requestCode", code))

	returnURL, ipn, err := h.responses.Responses(ctx, code)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	if returnURL == nil && ipn == nil {
		h.writeError(w, r, http.StatusNotFound, fmt.Errorf("no callback recorded for %s", code))
		return
	}

	status := paymentStatusResponse{ReturnURL: returnURL, IPN: ipn}

	if returnURL != nil {
		payDate, err := h.service.ParseTimestamp(returnURL.VNPData["PayDate"])
		if err != nil {
			status.QueryError = "pay date unavailable"
		} else {
			status.QueryDR, err = h.queryDR(r, returnURL.RequestCode, returnURL.OrderCode, payDate)
			if err != nil {
				status.QueryError = err.Error()
			}
		}
	}

	if err := writeJSON(w, http.StatusOK, status); err != nil {
		h.logger.ErrorContext(ctx, "Error encoding response", "error", err)
	}
}

type queryRequest struct {
	OrderCode string `json:"orderCode"`
	// TransactionDate uses the gateway layout yyyyMMddHHmmss.
	TransactionDate string `json:"transactionDate"`
}

func (h *Handlers) QueryPayment(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var body queryRequest
	if err := decodeBody(r, queryPaymentLoader, &body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid query request: %w", err))
		return
	}

	transactionDate, err := h.service.ParseTimestamp(body.TransactionDate)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid transaction date: %w", err))
		return
	}

	result, err := h.queryDR(r, code, body.OrderCode, transactionDate)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, vnpay.ErrConfiguration) {
			status = http.StatusInternalServerError
		}
		h.writeError(w, r, status, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		h.logger.ErrorContext(r.Context(), "Error encoding response", "error", err)
	}
}

func (h *Handlers) queryDR(r *http.Request, requestCode, orderCode string, transactionDate time.Time) (*models.QueryResult, error) {
	ctx := logging.AppendCtx(r.Context(), slog.String("requestCode", requestCode))

	startTime := time.Now()
	result, err := h.service.QueryDR(ctx, requestCode, orderCode, transactionDate, clientIP(r))
	if err != nil {
		metrics.QueryDR("error", startTime)
		h.logger.WarnContext(ctx, "QueryDR failed", "error", err)
		return nil, err
	}

	metrics.QueryDR(result.Outcome(), startTime)
	return result, nil
}
