package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/orderledger/internal/domain"
	kafkaInfra "github.com/iho/orderledger/internal/infrastructure/kafka"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
	"github.com/iho/orderledger/internal/usecase"
)

type fakeExecutionService struct {
	acked     []string
	rejected  map[string]string
	fills     []usecase.FillInput
	principal domain.Principal
	err       error
	duplicate bool
}

func (f *fakeExecutionService) AcknowledgeOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	f.principal, _ = domain.PrincipalFromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	f.acked = append(f.acked, orderID)
	return &domain.Order{ID: orderID}, nil
}

func (f *fakeExecutionService) RejectOrder(_ context.Context, orderID, reason string) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rejected == nil {
		f.rejected = map[string]string{}
	}
	f.rejected[orderID] = reason
	return &domain.Order{ID: orderID}, nil
}

func (f *fakeExecutionService) ApplyFill(_ context.Context, in usecase.FillInput) (*usecase.FillResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.fills = append(f.fills, in)
	return &usecase.FillResult{Order: &domain.Order{ID: in.OrderID}, Duplicate: f.duplicate}, nil
}

func message(t *testing.T, report ExecutionReport) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(report)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "executions", Partition: 2, Offset: 41, Value: raw}
}

func newHandler(svc *fakeExecutionService) (*ExecutionHandler, *metrics.Metrics) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	return NewExecutionHandler(svc, "venue-1", m, zerolog.Nop()), m
}

func TestExecutionHandler_Fill(t *testing.T) {
	svc := &fakeExecutionService{}
	h, m := newHandler(svc)

	err := h.HandleMessage(context.Background(), message(t, ExecutionReport{
		Kind:        KindFill,
		OrderID:     "o-1",
		ExecutionID: "x-1",
		Quantity:    "3",
		Price:       "101.25",
		ExecutedAt:  "2025-07-02T14:30:00Z",
	}))
	require.NoError(t, err)
	require.Len(t, svc.fills, 1)

	fill := svc.fills[0]
	assert.Equal(t, "o-1", fill.OrderID)
	assert.Equal(t, "x-1", fill.ExecutionID)
	assert.Equal(t, "3", fill.Quantity.String())
	assert.Equal(t, "101.25", fill.Price.String())
	assert.True(t, fill.ExecutedAt.Equal(time.Date(2025, 7, 2, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaConsumed.WithLabelValues(KindFill, "applied")))
}

func TestExecutionHandler_DuplicateFill(t *testing.T) {
	svc := &fakeExecutionService{duplicate: true}
	h, m := newHandler(svc)

	err := h.HandleMessage(context.Background(), message(t, ExecutionReport{
		Kind: KindFill, OrderID: "o-1", ExecutionID: "x-1", Quantity: "1", Price: "10",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaConsumed.WithLabelValues(KindFill, "duplicate")))
}

func TestExecutionHandler_AckActsAsVenue(t *testing.T) {
	svc := &fakeExecutionService{}
	h, _ := newHandler(svc)

	require.NoError(t, h.HandleMessage(context.Background(), message(t, ExecutionReport{Kind: KindAck, OrderID: "o-1"})))
	assert.Equal(t, []string{"o-1"}, svc.acked)
	assert.Equal(t, "venue-1", svc.principal.UserID)
	assert.Equal(t, domain.RoleVenue, svc.principal.Role)
}

func TestExecutionHandler_Reject(t *testing.T) {
	svc := &fakeExecutionService{}
	h, _ := newHandler(svc)

	require.NoError(t, h.HandleMessage(context.Background(), message(t, ExecutionReport{
		Kind: KindReject, OrderID: "o-1", Reason: "halted",
	})))
	assert.Equal(t, "halted", svc.rejected["o-1"])
}

func TestExecutionHandler_DeadLettersPermanentFailures(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		msg        func(t *testing.T) *sarama.ConsumerMessage
		wantReason string
	}{
		{
			name: "garbage payload",
			msg: func(*testing.T) *sarama.ConsumerMessage {
				return &sarama.ConsumerMessage{Value: []byte("{not json")}
			},
			wantReason: "decode",
		},
		{
			name: "empty message",
			msg: func(*testing.T) *sarama.ConsumerMessage {
				return &sarama.ConsumerMessage{}
			},
			wantReason: "decode",
		},
		{
			name: "unknown kind",
			msg: func(t *testing.T) *sarama.ConsumerMessage {
				return message(t, ExecutionReport{Kind: "bust", OrderID: "o-1"})
			},
			wantReason: "validation",
		},
		{
			name: "bad quantity",
			msg: func(t *testing.T) *sarama.ConsumerMessage {
				return message(t, ExecutionReport{Kind: KindFill, OrderID: "o-1", Quantity: "lots", Price: "1"})
			},
			wantReason: "validation",
		},
		{
			name:   "unknown order",
			svcErr: domain.ErrOrderNotFound,
			msg: func(t *testing.T) *sarama.ConsumerMessage {
				return message(t, ExecutionReport{Kind: KindAck, OrderID: "o-404"})
			},
			wantReason: "not_found",
		},
		{
			name:   "settle shortfall",
			svcErr: domain.ErrInsufficientBalance,
			msg: func(t *testing.T) *sarama.ConsumerMessage {
				return message(t, ExecutionReport{Kind: KindFill, OrderID: "o-1", ExecutionID: "x-1", Quantity: "1", Price: "10"})
			},
			wantReason: "settlement",
		},
		{
			name:   "corrupted ledger",
			svcErr: &domain.InvariantError{Entity: "wallet", ID: "w-1", Detail: "reserved < 0"},
			msg: func(t *testing.T) *sarama.ConsumerMessage {
				return message(t, ExecutionReport{Kind: KindFill, OrderID: "o-1", ExecutionID: "x-2", Quantity: "1", Price: "10"})
			},
			wantReason: "settlement",
		},
		{
			name:   "terminal order",
			svcErr: domain.ErrInvalidStateTransition,
			msg: func(t *testing.T) *sarama.ConsumerMessage {
				return message(t, ExecutionReport{Kind: KindReject, OrderID: "o-1"})
			},
			wantReason: "invalid_transition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandler(&fakeExecutionService{err: tt.svcErr})
			err := h.HandleMessage(context.Background(), tt.msg(t))

			var dlErr *kafkaInfra.DeadLetterError
			require.ErrorAs(t, err, &dlErr)
			assert.Equal(t, tt.wantReason, dlErr.Reason)
			if tt.svcErr != nil {
				assert.ErrorIs(t, err, tt.svcErr)
			}
		})
	}
}

func TestExecutionHandler_RedeliversTransientFailures(t *testing.T) {
	h, m := newHandler(&fakeExecutionService{err: errors.New("connection refused")})

	err := h.HandleMessage(context.Background(), message(t, ExecutionReport{
		Kind: KindFill, OrderID: "o-1", ExecutionID: "x-1", Quantity: "1", Price: "10",
	}))
	require.Error(t, err)

	var dlErr *kafkaInfra.DeadLetterError
	assert.False(t, errors.As(err, &dlErr), "transient failures must be redelivered, not dead-lettered")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KafkaConsumed.WithLabelValues(KindFill, "error")))
}
