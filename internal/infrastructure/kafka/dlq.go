package kafka

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// DeadLetterError marks a message that can never be applied. The consumer
// parks it on the dead-letter topic and moves past it.
type DeadLetterError struct {
	Err    error
	Reason string
}

func (e *DeadLetterError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *DeadLetterError) Unwrap() error {
	return e.Err
}

// DeadLetter wraps err so the consumer dead-letters the message instead of
// redelivering it. A nil err stays nil.
func DeadLetter(err error, reason string) error {
	if err == nil {
		return nil
	}
	return &DeadLetterError{Err: err, Reason: reason}
}

// DeadLetterPayload is what lands on the dead-letter topic. The original
// value is kept verbatim so an operator can replay it.
type DeadLetterPayload struct {
	OriginalTopic string    `json:"original_topic"`
	Partition     int32     `json:"partition"`
	Offset        int64     `json:"offset"`
	Key           string    `json:"key,omitempty"`
	Error         string    `json:"error"`
	Reason        string    `json:"reason,omitempty"`
	Payload       string    `json:"payload_base64"`
	Timestamp     time.Time `json:"timestamp"`
}

// BuildDeadLetterPayload describes msg and why it was parked.
func BuildDeadLetterPayload(msg *sarama.ConsumerMessage, dlErr *DeadLetterError, now time.Time) DeadLetterPayload {
	p := DeadLetterPayload{
		OriginalTopic: msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Key:           string(msg.Key),
		Timestamp:     now.UTC(),
	}
	if len(msg.Value) > 0 {
		p.Payload = base64.StdEncoding.EncodeToString(msg.Value)
	}
	if dlErr != nil {
		p.Reason = dlErr.Reason
		if dlErr.Err != nil {
			p.Error = dlErr.Err.Error()
		}
	}
	return p
}
