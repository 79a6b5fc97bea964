package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
	"github.com/iho/orderledger/internal/usecase/mocks"
)

func TestKycUseCase_Status(t *testing.T) {
	h := newHarness(t)

	status, err := h.kyc.Status(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.KycApproved, status)

	status, err = h.kyc.Status(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Equal(t, domain.KycNotStarted, status)
}

func TestKycUseCase_StatusPropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockKycRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), "u1").Return(nil, errors.New("connection reset"))

	uc := usecase.NewKycUseCase(mocks.NewMockTransactionManager(), repo, nil, nil, mocks.NewMockIDGenerator(), zerolog.Nop())

	_, err := uc.Status(context.Background(), "u1")
	require.Error(t, err)
}

func TestKycUseCase_HandleStatusChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	at := testNow

	record, err := h.kyc.HandleStatusChange(ctx, "u2", domain.KycPending, at)
	require.NoError(t, err)
	assert.Equal(t, domain.KycPending, record.Status)

	record, err = h.kyc.HandleStatusChange(ctx, "u2", domain.KycApproved, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.KycApproved, record.Status)

	// A delayed notification must not regress the user.
	record, err = h.kyc.HandleStatusChange(ctx, "u2", domain.KycPending, at.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.KycApproved, record.Status)

	status, err := h.kyc.Status(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.KycApproved, status)

	entries := h.store.AuditEntriesFor("user", "u2")
	require.Len(t, entries, 2)
	assert.Equal(t, "not_started", entries[0].Metadata.Before["status"])
	assert.Equal(t, "approved", entries[1].Metadata.After["status"])
	assert.Len(t, h.store.OutboxEvents(), 2)
}

func TestKycUseCase_RejectionIsWarning(t *testing.T) {
	h := newHarness(t)

	_, err := h.kyc.HandleStatusChange(context.Background(), "u1", domain.KycRejected, testNow.Add(time.Hour))
	require.NoError(t, err)

	entries := h.store.AuditEntriesFor("user", "u1")
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditSeverityWarning, entries[0].Severity)
}

func TestKycUseCase_HandleStatusChangeValidation(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		status domain.KycStatus
	}{
		{name: "missing user", userID: "", status: domain.KycApproved},
		{name: "unknown status", userID: "u1", status: "verified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.kyc.HandleStatusChange(context.Background(), tt.userID, tt.status, testNow)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, h.store.OutboxEvents())
		})
	}
}
