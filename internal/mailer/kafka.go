package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the Kafka mailer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer publishing to topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

// Kafka publishes emails as JSON records for an external delivery worker.
// Records are keyed by recipient so one organizer's mail stays ordered.
type Kafka struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafka returns a Kafka mailer over writer.
func NewKafka(writer MessageWriter, logger *zap.Logger) *Kafka {
	return &Kafka{writer: writer, logger: logger}
}

// Send publishes the email and waits for the broker acknowledgement.
func (k *Kafka) Send(ctx context.Context, email model.Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(email.To),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish email: %w", err)
	}

	k.logger.Debug("email published", zap.String("to", email.To))
	return nil
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
