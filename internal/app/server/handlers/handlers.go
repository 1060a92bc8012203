package handlers

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"francoggm/vnpay-go-redis/internal/config"
	"francoggm/vnpay-go-redis/internal/models"
	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/bytedance/sonic"
	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 64 << 10

type PaymentService interface {
	CreatePaymentLink(ctx context.Context, txType string, req *models.PaymentRequest, redirect string, client models.ClientInfo) (string, error)
	ProcessCallback(ctx context.Context, query url.Values) (*vnpay.CallbackResult, error)
	QueryDR(ctx context.Context, requestCode, orderCode string, transactionDate time.Time, clientIP string) (*models.QueryResult, error)
	ParseTimestamp(value string) (time.Time, error)
}

type Dispatcher interface {
	DispatchReturnURL(ctx context.Context, txType string, response *models.PaymentResponse) error
	DispatchIPN(ctx context.Context, txType string, response *models.PaymentResponse) error
}

type ResponseReader interface {
	Responses(ctx context.Context, requestCode string) (returnURL, ipn *models.PaymentResponse, err error)
}

type Handlers struct {
	cfg        *config.Config
	service    PaymentService
	dispatcher Dispatcher
	responses  ResponseReader
	logger     *slog.Logger
}

func NewHandlers(cfg *config.Config, service PaymentService, dispatcher Dispatcher, responses ResponseReader, logger *slog.Logger) *Handlers {
	return &Handlers{
		cfg:        cfg,
		service:    service,
		dispatcher: dispatcher,
		responses:  responses,
		logger:     logger,
	}
}

func (h *Handlers) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// clientInfo resolves the buyer address and the absolute base URL the
// gateway should send the browser back to.
func (h *Handlers) clientInfo(r *http.Request) models.ClientInfo {
	return models.ClientInfo{
		IP:      clientIP(r),
		BaseURL: h.baseURL(r),
	}
}

func (h *Handlers) baseURL(r *http.Request) string {
	if h.cfg.Server.PublicURL != "" {
		return h.cfg.Server.PublicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// decodeBody checks the request body against schema before decoding it into v.
func decodeBody(r *http.Request, schema gojsonschema.JSONLoader, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}

	if err := validateJSONSchema(schema, body); err != nil {
		return err
	}

	return sonic.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	data, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), "error", err)
	}

	if werr := writeJSON(w, status, errorResponse{Error: err.Error()}); werr != nil {
		h.logger.ErrorContext(r.Context(), "Error encoding response", "error", werr)
	}
}
