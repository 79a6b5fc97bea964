package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	kafkaInfra "github.com/iho/orderledger/internal/infrastructure/kafka"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
	"github.com/iho/orderledger/internal/usecase"
)

// Execution report kinds.
const (
	KindFill   = "fill"
	KindAck    = "ack"
	KindReject = "reject"
)

// ExecutionReport is one venue message on the executions topic.
type ExecutionReport struct {
	Kind        string `json:"kind"`
	OrderID     string `json:"order_id"`
	ExecutionID string `json:"execution_id,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Price       string `json:"price,omitempty"`
	ExecutedAt  string `json:"executed_at,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// ExecutionService is the slice of the order lifecycle driven by venues.
type ExecutionService interface {
	AcknowledgeOrder(ctx context.Context, orderID string) (*domain.Order, error)
	RejectOrder(ctx context.Context, orderID, reason string) (*domain.Order, error)
	ApplyFill(ctx context.Context, in usecase.FillInput) (*usecase.FillResult, error)
}

// ExecutionHandler applies execution reports to orders.
type ExecutionHandler struct {
	orders  ExecutionService
	venueID string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewExecutionHandler creates a handler acting as venueID in the audit trail.
func NewExecutionHandler(orders ExecutionService, venueID string, m *metrics.Metrics, logger zerolog.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		orders:  orders,
		venueID: venueID,
		metrics: m,
		logger:  logger.With().Str("component", "execution_consumer").Logger(),
	}
}

// HandleMessage decodes and applies one report. Reports that can never be
// applied are returned as dead-letter errors so they are parked, not lost;
// anything else is returned plain so the message is redelivered.
func (h *ExecutionHandler) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if msg == nil {
		return nil
	}
	if len(msg.Value) == 0 {
		h.observe("unknown", "dead_lettered")
		return kafkaInfra.DeadLetter(errors.New("empty execution report"), "decode")
	}

	var report ExecutionReport
	if err := json.Unmarshal(msg.Value, &report); err != nil {
		h.observe("unknown", "dead_lettered")
		return kafkaInfra.DeadLetter(fmt.Errorf("decode execution report: %w", err), "decode")
	}

	ctx = domain.ContextWithPrincipal(ctx, domain.Principal{UserID: h.venueID, Role: domain.RoleVenue})
	ctx = domain.ContextWithRequestID(ctx, fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset))

	result, err := h.apply(ctx, report)
	if err != nil {
		err = fmt.Errorf("apply %s report for order %s: %w", report.Kind, report.OrderID, err)
		if reason := deadLetterReason(err); reason != "" {
			h.logger.Warn().Err(err).
				Str("kind", report.Kind).
				Str("order_id", report.OrderID).
				Str("execution_id", report.ExecutionID).
				Str("reason", reason).
				Msg("execution report dead-lettered")
			h.observe(report.Kind, "dead_lettered")
			return kafkaInfra.DeadLetter(err, reason)
		}
		h.observe(report.Kind, "error")
		return err
	}

	h.observe(report.Kind, result)
	return nil
}

func (h *ExecutionHandler) apply(ctx context.Context, r ExecutionReport) (string, error) {
	switch r.Kind {
	case KindAck:
		if _, err := h.orders.AcknowledgeOrder(ctx, r.OrderID); err != nil {
			return "", err
		}
		return "applied", nil

	case KindReject:
		if _, err := h.orders.RejectOrder(ctx, r.OrderID, r.Reason); err != nil {
			return "", err
		}
		return "applied", nil

	case KindFill:
		in, err := r.fillInput()
		if err != nil {
			return "", err
		}
		res, err := h.orders.ApplyFill(ctx, in)
		if err != nil {
			return "", err
		}
		if res.Duplicate {
			return "duplicate", nil
		}
		return "applied", nil

	default:
		return "", domain.NewValidationError("kind", fmt.Sprintf("unknown report kind %q", r.Kind))
	}
}

func (r ExecutionReport) fillInput() (usecase.FillInput, error) {
	verr := &domain.ValidationError{}
	qty, err := decimal.NewFromString(r.Quantity)
	if err != nil {
		verr.Add("quantity", "must be a decimal string")
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		verr.Add("price", "must be a decimal string")
	}
	var executedAt time.Time
	if r.ExecutedAt != "" {
		executedAt, err = time.Parse(time.RFC3339Nano, r.ExecutedAt)
		if err != nil {
			verr.Add("executed_at", "must be RFC 3339")
		}
	}
	if err := verr.OrNil(); err != nil {
		return usecase.FillInput{}, err
	}

	return usecase.FillInput{
		OrderID:     r.OrderID,
		ExecutionID: r.ExecutionID,
		Quantity:    qty,
		Price:       price,
		ExecutedAt:  executedAt,
	}, nil
}

// deadLetterReason classifies failures that redelivery cannot fix. An empty
// reason means the failure may be transient.
func deadLetterReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrInvariantViolation):
		return "settlement"
	default:
		return ""
	}
}

func (h *ExecutionHandler) observe(kind, result string) {
	if h.metrics == nil {
		return
	}
	switch kind {
	case KindFill, KindAck, KindReject:
	default:
		kind = "unknown"
	}
	h.metrics.KafkaConsumed.WithLabelValues(kind, result).Inc()
}
