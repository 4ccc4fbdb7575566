package messaging

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/domain/entities"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReportPublisher publishes report events as JSON, keyed by pair
type KafkaReportPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaReportPublisher creates a synchronous writer that waits for all replicas
func NewKafkaReportPublisher(brokers []string, topic string) *KafkaReportPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaReportPublisher{writer: w, topic: topic}
}

// Publish writes one event
func (p *KafkaReportPublisher) Publish(ctx context.Context, event *entities.ReportEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return apperrors.ErrMessagingFailed(p.topic, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.PartitionKey()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "job_type", Value: []byte(event.JobType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return apperrors.ErrMessagingFailed(p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaReportPublisher) Close() error {
	return p.writer.Close()
}
