package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type CallbackEvent struct {
	ID         string                  `json:"id"`
	Flow       string                  `json:"flow"`
	Type       string                  `json:"type"`
	Outcome    string                  `json:"outcome"`
	ReceivedAt time.Time               `json:"receivedAt"`
	Response   *models.PaymentResponse `json:"response"`
}

// KafkaPublisher publishes both callback flows, keyed by request code so the
// events of one payment land on the same partition.
type KafkaPublisher struct {
	Base
	writer MessageWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewKafkaPublisher(writer MessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

func (p *KafkaPublisher) ProcessReturnURL(ctx context.Context, response *models.PaymentResponse) error {
	return p.publish(ctx, models.FlowReturnURL, response)
}

func (p *KafkaPublisher) ProcessIPN(ctx context.Context, response *models.PaymentResponse) error {
	return p.publish(ctx, models.FlowIPN, response)
}

func (p *KafkaPublisher) publish(ctx context.Context, flow string, response *models.PaymentResponse) error {
	event := CallbackEvent{
		ID:         uuid.NewString(),
		Flow:       flow,
		Type:       TxType(ctx),
		Outcome:    response.Outcome(),
		ReceivedAt: p.now().UTC(),
		Response:   response,
	}

	value, err := sonic.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(response.RequestCode),
		Value: value,
		Headers: []kafka.Header{
			{Key: "flow", Value: []byte(flow)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", flow, err)
	}

	p.logger.InfoContext(ctx, "Published callback event", slog.String("eventId", event.ID), slog.String("flow", flow))
	return nil
}
