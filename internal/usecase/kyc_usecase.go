package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/domain"
)

// KycUseCase keeps the last verification status notified by the identity
// provider and answers gate lookups from it.
type KycUseCase struct {
	txManager  TransactionManager
	kycRepo    KycRepository
	outboxRepo OutboxRepository
	audit      *AuditRecorder
	idGen      IDGenerator
	logger     zerolog.Logger
}

func NewKycUseCase(
	txManager TransactionManager,
	kycRepo KycRepository,
	outboxRepo OutboxRepository,
	audit *AuditRecorder,
	idGen IDGenerator,
	logger zerolog.Logger,
) *KycUseCase {
	return &KycUseCase{
		txManager:  txManager,
		kycRepo:    kycRepo,
		outboxRepo: outboxRepo,
		audit:      audit,
		idGen:      idGen,
		logger:     logger.With().Str("component", "kyc").Logger(),
	}
}

// Status returns the user's current status. Users never notified are not_started.
func (uc *KycUseCase) Status(ctx context.Context, userID string) (domain.KycStatus, error) {
	record, err := uc.kycRepo.Get(ctx, userID)
	if errors.Is(err, domain.ErrKycNotFound) {
		return domain.KycNotStarted, nil
	}
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

// HandleStatusChange stores a status notification. Notifications older than
// the stored record are ignored so out-of-order delivery cannot regress a user.
func (uc *KycUseCase) HandleStatusChange(ctx context.Context, userID string, status domain.KycStatus, at time.Time) (*domain.KycRecord, error) {
	verr := &domain.ValidationError{}
	if userID == "" {
		verr.Add("user_id", "is required")
	}
	if !status.IsValid() {
		verr.Add("status", "unknown kyc status")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var record *domain.KycRecord
	err := runInTx(ctx, uc.txManager, nil, func(ctx context.Context, tx Transaction) error {
		previous, err := uc.kycRepo.Get(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrKycNotFound):
			previous = &domain.KycRecord{UserID: userID, Status: domain.KycNotStarted}
		case err != nil:
			return err
		case at.Before(previous.UpdatedAt):
			uc.logger.Info().Str("user_id", userID).Str("status", string(status)).Msg("stale kyc notification ignored")
			record = previous
			return nil
		}

		record = &domain.KycRecord{UserID: userID, Status: status, UpdatedAt: at}
		if err := uc.kycRepo.Upsert(ctx, tx, record); err != nil {
			return err
		}

		severity := domain.AuditSeverityInfo
		if status == domain.KycRejected {
			severity = domain.AuditSeverityWarning
		}
		if err := uc.audit.Append(ctx, tx, &domain.AuditEntry{
			EventType:    domain.AuditKycStatusChanged,
			Category:     domain.AuditCategoryCompliance,
			Severity:     severity,
			Description:  "verification status changed",
			ResourceType: "user",
			ResourceID:   userID,
			Metadata: domain.AuditMetadata{
				Before: domain.JSON{"status": string(previous.Status)},
				After:  domain.JSON{"status": string(status)},
			},
		}); err != nil {
			return err
		}

		return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   userID,
			AggregateType: domain.AggregateTypeUser,
			EventType:     domain.EventTypeKycStatusChanged,
			Payload: map[string]any{
				"user_id": userID,
				"status":  string(status),
			},
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
