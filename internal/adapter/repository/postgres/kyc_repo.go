package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// KycRepository implements usecase.KycRepository.
type KycRepository struct {
	queries *generated.Queries
}

// NewKycRepository creates a new KycRepository.
func NewKycRepository(db generated.DBTX) *KycRepository {
	return &KycRepository{queries: generated.New(db)}
}

// Get returns the last notified status, or ErrKycNotFound.
func (r *KycRepository) Get(ctx context.Context, userID string) (*domain.KycRecord, error) {
	row, err := r.queries.GetKycRecord(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKycNotFound
		}

		return nil, err
	}

	return &domain.KycRecord{
		UserID:    row.UserID,
		Status:    domain.KycStatus(row.Status),
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

// Upsert stores record unless a newer notification is already on file.
func (r *KycRepository) Upsert(ctx context.Context, tx usecase.Transaction, record *domain.KycRecord) error {
	return queriesFor(tx).UpsertKycRecord(ctx, generated.UpsertKycRecordParams{
		UserID:    record.UserID,
		Status:    string(record.Status),
		UpdatedAt: timeToPgTimestamptz(record.UpdatedAt),
	})
}
