package kafka

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	ctx    context.Context
	marked []int64
}

func (s *stubSession) Claims() map[string][]int32                        { return nil }
func (s *stubSession) MemberID() string                                  { return "member" }
func (s *stubSession) GenerationID() int32                               { return 1 }
func (s *stubSession) MarkOffset(string, int32, int64, string)           {}
func (s *stubSession) Commit()                                           {}
func (s *stubSession) ResetOffset(string, int32, int64, string)          {}
func (s *stubSession) Context() context.Context                          { return s.ctx }
func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) { s.marked = append(s.marked, msg.Offset) }

type stubClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *stubClaim) Topic() string                            { return "executions" }
func (c *stubClaim) Partition() int32                         { return 0 }
func (c *stubClaim) InitialOffset() int64                     { return 0 }
func (c *stubClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *stubClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

type publishedMessage struct {
	topic string
	key   string
	value any
}

type stubPublisher struct {
	calls []publishedMessage
	err   error
}

func (p *stubPublisher) PublishJSON(_ context.Context, topic, key string, value any) (int32, int64, error) {
	if p.err != nil {
		return 0, 0, p.err
	}
	p.calls = append(p.calls, publishedMessage{topic: topic, key: key, value: value})
	return 0, int64(len(p.calls)), nil
}

func (p *stubPublisher) Close() error { return nil }

type handlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f handlerFunc) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg)
}

func newClaim(offsets ...int64) *stubClaim {
	claim := &stubClaim{messages: make(chan *sarama.ConsumerMessage, len(offsets))}
	for _, off := range offsets {
		claim.messages <- &sarama.ConsumerMessage{
			Topic:  "executions",
			Key:    []byte("o-1"),
			Value:  []byte(`{"kind":"fill"}`),
			Offset: off,
		}
	}
	close(claim.messages)
	return claim
}

func TestGroupHandler_MarksHandledMessages(t *testing.T) {
	handler := handlerFunc(func(context.Context, *sarama.ConsumerMessage) error { return nil })
	session := &stubSession{ctx: context.Background()}
	h := NewGroupHandler(handler, zerolog.Nop())

	require.NoError(t, h.Setup(session))
	require.NoError(t, h.ConsumeClaim(session, newClaim(0, 1, 2)))
	require.NoError(t, h.Cleanup(session))

	assert.Equal(t, []int64{0, 1, 2}, session.marked)
	assert.False(t, h.takeFailure())
}

func TestGroupHandler_StopsAtFailedMessage(t *testing.T) {
	attempts := map[int64]int{}
	handler := handlerFunc(func(_ context.Context, msg *sarama.ConsumerMessage) error {
		attempts[msg.Offset]++
		if msg.Offset == 10 {
			return errors.New("connection refused")
		}
		return nil
	})

	session := &stubSession{ctx: context.Background()}
	h := NewGroupHandler(handler, zerolog.Nop())

	err := h.ConsumeClaim(session, newClaim(9, 10, 11))
	require.Error(t, err)

	// nothing at or past the failed offset may be committed
	assert.Equal(t, []int64{9}, session.marked)
	assert.Equal(t, map[int64]int{9: 1, 10: 1}, attempts)
	assert.True(t, h.takeFailure())
	assert.False(t, h.takeFailure())
}

func TestGroupHandler_DeadLettersAndContinues(t *testing.T) {
	handler := handlerFunc(func(_ context.Context, msg *sarama.ConsumerMessage) error {
		if msg.Offset == 1 {
			return DeadLetter(errors.New("unknown order"), "not_found")
		}
		return nil
	})

	dlq := &stubPublisher{}
	session := &stubSession{ctx: context.Background()}
	h := NewGroupHandler(handler, zerolog.Nop()).WithDeadLetter(dlq, "executions.dlq")
	h.now = func() time.Time { return time.Date(2025, 7, 2, 14, 0, 0, 0, time.UTC) }

	require.NoError(t, h.ConsumeClaim(session, newClaim(0, 1, 2)))
	assert.Equal(t, []int64{0, 1, 2}, session.marked)

	require.Len(t, dlq.calls, 1)
	assert.Equal(t, "executions.dlq", dlq.calls[0].topic)
	assert.Equal(t, "o-1", dlq.calls[0].key)

	payload, ok := dlq.calls[0].value.(DeadLetterPayload)
	require.True(t, ok, "expected DeadLetterPayload, got %T", dlq.calls[0].value)
	assert.Equal(t, int64(1), payload.Offset)
	assert.Equal(t, "not_found", payload.Reason)
	assert.Equal(t, "unknown order", payload.Error)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(`{"kind":"fill"}`)), payload.Payload)
	assert.False(t, h.takeFailure())
}

func TestGroupHandler_DeadLetterPublishFailureStopsClaim(t *testing.T) {
	handler := handlerFunc(func(_ context.Context, msg *sarama.ConsumerMessage) error {
		if msg.Offset == 1 {
			return DeadLetter(errors.New("bad quantity"), "validation")
		}
		return nil
	})

	session := &stubSession{ctx: context.Background()}
	h := NewGroupHandler(handler, zerolog.Nop()).
		WithDeadLetter(&stubPublisher{err: errors.New("broker down")}, "executions.dlq")

	require.Error(t, h.ConsumeClaim(session, newClaim(0, 1, 2)))
	assert.Equal(t, []int64{0}, session.marked)
	assert.True(t, h.takeFailure())
}

func TestGroupHandler_DeadLetterWithoutTopicSkips(t *testing.T) {
	handler := handlerFunc(func(context.Context, *sarama.ConsumerMessage) error {
		return DeadLetter(errors.New("undecodable"), "decode")
	})

	session := &stubSession{ctx: context.Background()}
	h := NewGroupHandler(handler, zerolog.Nop()).WithDeadLetter(nil, "executions.dlq")

	require.NoError(t, h.ConsumeClaim(session, newClaim(0, 1)))
	assert.Equal(t, []int64{0, 1}, session.marked)
}

func TestDeadLetter(t *testing.T) {
	assert.NoError(t, DeadLetter(nil, "decode"))

	cause := errors.New("unknown order")
	err := DeadLetter(cause, "not_found")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "not_found: unknown order", err.Error())

	var dlErr *DeadLetterError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &dlErr)
	assert.Equal(t, "not_found", dlErr.Reason)
}
