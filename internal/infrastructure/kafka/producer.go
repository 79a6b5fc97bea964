package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// Publisher sends JSON messages to a topic.
type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, value any) (int32, int64, error)
	Close() error
}

// SyncProducer publishes with acks from all in-sync replicas.
type SyncProducer struct {
	producer sarama.SyncProducer
	logger   zerolog.Logger
}

// NewProducerConfig returns the idempotent producer settings used in production.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond
	return cfg
}

// NewSyncProducer dials brokers.
func NewSyncProducer(brokers []string, logger zerolog.Logger) (*SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers required")
	}

	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return NewSyncProducerFrom(producer, logger), nil
}

// NewSyncProducerFrom wraps an existing sarama producer.
func NewSyncProducerFrom(producer sarama.SyncProducer, logger zerolog.Logger) *SyncProducer {
	return &SyncProducer{producer: producer, logger: logger}
}

// PublishJSON marshals value and sends it keyed by key.
func (p *SyncProducer) PublishJSON(ctx context.Context, topic, key string, value any) (int32, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return 0, 0, fmt.Errorf("marshal kafka payload: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Str("key", key).Msg("kafka publish failed")
		return 0, 0, fmt.Errorf("kafka publish failed: %w", err)
	}

	return partition, offset, nil
}

// Close flushes and closes the producer.
func (p *SyncProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
