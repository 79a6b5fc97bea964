package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// MessageHandler processes one consumed message. A *DeadLetterError parks the
// message on the dead-letter topic; any other error stops the claim so the
// message is redelivered from the last committed offset.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// DefaultRetryDelay is the pause before rejoining the group after a failed claim.
const DefaultRetryDelay = 2 * time.Second

// Consumer runs a consumer group.
type Consumer struct {
	group      sarama.ConsumerGroup
	logger     zerolog.Logger
	dlq        Publisher
	dlqTopic   string
	retryDelay time.Duration
}

// NewConsumer joins groupID on brokers.
func NewConsumer(brokers []string, groupID string, logger zerolog.Logger) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers required")
	}
	if groupID == "" {
		return nil, errors.New("kafka consumer group required")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Session.Timeout = 30 * time.Second
	cfg.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}

	c := &Consumer{group: group, logger: logger, retryDelay: DefaultRetryDelay}
	go c.logErrors()
	return c, nil
}

// WithDeadLetter routes messages the handler dead-letters to topic via pub.
func (c *Consumer) WithDeadLetter(pub Publisher, topic string) *Consumer {
	c.dlq = pub
	c.dlqTopic = topic
	return c
}

// Consume blocks until ctx is cancelled, rejoining the group after each
// rebalance or failed claim.
func (c *Consumer) Consume(ctx context.Context, topics []string, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler required")
	}

	cgHandler := NewGroupHandler(handler, c.logger).WithDeadLetter(c.dlq, c.dlqTopic)

	for {
		err := c.group.Consume(ctx, topics, cgHandler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			c.logger.Error().Err(err).Strs("topics", topics).Msg("kafka consume error")
		}
		if err != nil || cgHandler.takeFailure() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}
}

func (c *Consumer) logErrors() {
	for err := range c.group.Errors() {
		c.logger.Error().Err(err).Msg("kafka consumer group error")
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c.group == nil {
		return nil
	}
	return c.group.Close()
}

// GroupHandler adapts a MessageHandler to sarama.ConsumerGroupHandler.
type GroupHandler struct {
	handler  MessageHandler
	logger   zerolog.Logger
	dlq      Publisher
	dlqTopic string
	now      func() time.Time
	failed   atomic.Bool
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(handler MessageHandler, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{handler: handler, logger: logger, now: time.Now}
}

// WithDeadLetter sets where dead-lettered messages go. Without a publisher
// they are logged with their payload and skipped.
func (h *GroupHandler) WithDeadLetter(pub Publisher, topic string) *GroupHandler {
	if pub != nil && topic != "" {
		h.dlq = pub
		h.dlqTopic = topic
	}
	return h
}

func (h *GroupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *GroupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks a message only once it is applied or dead-lettered.
// Offsets are cumulative, so the first failure ends the claim; nothing after
// it is marked and the session restarts from the failed message.
func (h *GroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		err := h.handler.HandleMessage(session.Context(), msg)
		if err != nil {
			var dlErr *DeadLetterError
			if !errors.As(err, &dlErr) {
				h.fail(msg, err)
				return fmt.Errorf("handle %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
			}
			if err := h.deadLetter(session.Context(), msg, dlErr); err != nil {
				h.fail(msg, err)
				return err
			}
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

func (h *GroupHandler) fail(msg *sarama.ConsumerMessage, err error) {
	h.failed.Store(true)
	h.logger.Error().Err(err).
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("kafka message not applied, stopping claim for redelivery")
}

func (h *GroupHandler) deadLetter(ctx context.Context, msg *sarama.ConsumerMessage, dlErr *DeadLetterError) error {
	payload := BuildDeadLetterPayload(msg, dlErr, h.now())

	if h.dlq == nil {
		h.logger.Error().Err(dlErr).
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Str("payload_base64", payload.Payload).
			Msg("kafka message dead-lettered without a dead-letter topic")
		return nil
	}

	if _, _, err := h.dlq.PublishJSON(ctx, h.dlqTopic, string(msg.Key), payload); err != nil {
		return fmt.Errorf("publish to dead-letter topic %s: %w", h.dlqTopic, err)
	}
	h.logger.Warn().Err(dlErr).
		Str("topic", msg.Topic).
		Int64("offset", msg.Offset).
		Str("dlq_topic", h.dlqTopic).
		Msg("kafka message dead-lettered")
	return nil
}

// takeFailure reports and clears whether a claim stopped on a failed message.
func (h *GroupHandler) takeFailure() bool {
	return h.failed.Swap(false)
}
