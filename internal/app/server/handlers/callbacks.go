package handlers

import (
	"log/slog"
	"net/http"

	"francoggm/vnpay-go-redis/internal/logging"
	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/models"
)

const (
	ackConfirmed = "00"
	ackFailed    = "02"
)

// VNPayReturn handles the browser redirect. It always ends in a redirect,
// to the stored target when there is one.
func (h *Handlers) VNPayReturn(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("flow", models.FlowReturnURL))
	target := h.cfg.VNPay.FallbackRedirect

	result, err := h.service.ProcessCallback(ctx, r.URL.Query())
	if err != nil {
		metrics.Callback(models.FlowReturnURL, "error")
		h.logger.ErrorContext(ctx, "Error processing return callback", "error", err)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	ctx = logging.AppendCtx(ctx, slog.String("requestCode", result.Response.RequestCode))
	metrics.Callback(models.FlowReturnURL, result.Response.Outcome())

	// The buyer is redirected even when a processor fails.
	_ = h.dispatcher.DispatchReturnURL(ctx, result.Type, result.Response)

	if result.RedirectURL != "" {
		target = result.RedirectURL
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// VNPayIPN handles the server to server notification. The gateway always
// gets a 200 with an acknowledgement body; failures only change RspCode and
// Message so the gateway retries.
func (h *Handlers) VNPayIPN(w http.ResponseWriter, r *http.Request) {
	ctx := logging.AppendCtx(r.Context(), slog.String("flow", models.FlowIPN))
	ack := models.IPNAck{RspCode: ackConfirmed}

	result, err := h.service.ProcessCallback(ctx, r.URL.Query())
	if err != nil {
		metrics.Callback(models.FlowIPN, "error")
		h.logger.ErrorContext(ctx, "Error processing ipn", "error", err)
	} else {
		ctx = logging.AppendCtx(ctx, slog.String("requestCode", result.Response.RequestCode))
		metrics.Callback(models.FlowIPN, result.Response.Outcome())
		err = h.dispatcher.DispatchIPN(ctx, result.Type, result.Response)
	}

	if err != nil {
		ack = models.IPNAck{RspCode: ackFailed, Message: err.Error()}
	}

	metrics.IPNAck(ack.RspCode)

	if err := writeJSON(w, http.StatusOK, ack); err != nil {
		h.logger.ErrorContext(ctx, "Error encoding ipn acknowledgement", "error", err)
	}
}
