package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/bytedance/sonic"
)

const defaultWebhookTimeoutMs = 10_000

type webhookPayload struct {
	Type     string                  `json:"type"`
	Outcome  string                  `json:"outcome"`
	Response *models.PaymentResponse `json:"response"`
}

// WebhookForwarder posts every IPN response to a merchant endpoint. A failed
// delivery fails the IPN acknowledgement so the gateway retries.
type WebhookForwarder struct {
	Base
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookForwarder(url string, timeoutMs int, logger *slog.Logger) *WebhookForwarder {
	if timeoutMs <= 0 {
		timeoutMs = defaultWebhookTimeoutMs
	}

	return &WebhookForwarder{
		url:    url,
		client: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		logger: logger,
	}
}

func (f *WebhookForwarder) ProcessIPN(ctx context.Context, response *models.PaymentResponse) error {
	payload, err := sonic.Marshal(webhookPayload{
		Type:     TxType(ctx),
		Outcome:  response.Outcome(),
		Response: response,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("forward ipn: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		f.logger.WarnContext(ctx, "Webhook rejected ipn",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("forward ipn: webhook responded %s", resp.Status)
	}

	f.logger.InfoContext(ctx, "Forwarded ipn", slog.String("requestCode", response.RequestCode))
	return nil
}
