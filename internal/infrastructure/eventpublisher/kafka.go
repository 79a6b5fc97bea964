package eventpublisher

import (
	"context"
	"time"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/kafka"
)

// Envelope is the wire shape of an event on the events topic.
type Envelope struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	OccurredAt    string         `json:"occurred_at"`
	Payload       map[string]any `json:"payload"`
}

// KafkaPublisher writes outbox events to a topic keyed by aggregate ID, so
// every event of one order lands on the same partition in order.
type KafkaPublisher struct {
	producer kafka.Publisher
	topic    string
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(producer kafka.Publisher, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends the event envelope.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	_, _, err := p.producer.PublishJSON(ctx, p.topic, event.AggregateID, Envelope{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		OccurredAt:    event.CreatedAt.UTC().Format(time.RFC3339Nano),
		Payload:       event.Payload,
	})
	return err
}
