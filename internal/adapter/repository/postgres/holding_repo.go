package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// HoldingRepository implements usecase.HoldingRepository.
type HoldingRepository struct {
	queries *generated.Queries
}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(db generated.DBTX) *HoldingRepository {
	return &HoldingRepository{queries: generated.New(db)}
}

// Create inserts a new position.
func (r *HoldingRepository) Create(ctx context.Context, tx usecase.Transaction, holding *domain.Holding) error {
	err := queriesFor(tx).CreateHolding(ctx, generated.CreateHoldingParams{
		ID:                   holding.ID,
		UserID:               holding.UserID,
		AssetID:              holding.AssetID,
		Quantity:             decimalToNumeric(holding.Quantity),
		ReservedQuantity:     decimalToNumeric(holding.ReservedQuantity),
		AveragePurchasePrice: decimalToNumeric(holding.AveragePurchasePrice),
		TotalInvested:        decimalToNumeric(holding.TotalInvested),
		CurrentValue:         decimalToNumeric(holding.CurrentValue),
		UnrealizedPnl:        decimalToNumeric(holding.UnrealizedPnl),
		RealizedPnl:          decimalToNumeric(holding.RealizedPnl),
		Version:              holding.Version,
		CreatedAt:            timeToPgTimestamptz(holding.CreatedAt),
		UpdatedAt:            timeToPgTimestamptz(holding.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrConcurrentModification
	}

	return err
}

// GetByID retrieves a holding by ID.
func (r *HoldingRepository) GetByID(ctx context.Context, id string) (*domain.Holding, error) {
	row, err := r.queries.GetHoldingByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldingNotFound
		}

		return nil, err
	}

	return rowToHolding(row), nil
}

// GetByIDForUpdate retrieves a holding by ID with a FOR UPDATE lock.
func (r *HoldingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Holding, error) {
	row, err := queriesFor(tx).GetHoldingByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldingNotFound
		}

		return nil, err
	}

	return rowToHolding(row), nil
}

// GetByUserAssetForUpdate locks the user's position in assetID.
func (r *HoldingRepository) GetByUserAssetForUpdate(ctx context.Context, tx usecase.Transaction, userID, assetID string) (*domain.Holding, error) {
	row, err := queriesFor(tx).GetHoldingByUserAssetForUpdate(ctx, generated.GetHoldingByUserAssetForUpdateParams{
		UserID:  userID,
		AssetID: assetID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldingNotFound
		}

		return nil, err
	}

	return rowToHolding(row), nil
}

// Update writes the position guarded by its version.
func (r *HoldingRepository) Update(ctx context.Context, tx usecase.Transaction, holding *domain.Holding) error {
	affected, err := queriesFor(tx).UpdateHolding(ctx, generated.UpdateHoldingParams{
		ID:                   holding.ID,
		Quantity:             decimalToNumeric(holding.Quantity),
		ReservedQuantity:     decimalToNumeric(holding.ReservedQuantity),
		AveragePurchasePrice: decimalToNumeric(holding.AveragePurchasePrice),
		TotalInvested:        decimalToNumeric(holding.TotalInvested),
		CurrentValue:         decimalToNumeric(holding.CurrentValue),
		UnrealizedPnl:        decimalToNumeric(holding.UnrealizedPnl),
		RealizedPnl:          decimalToNumeric(holding.RealizedPnl),
		UpdatedAt:            timeToPgTimestamptz(holding.UpdatedAt),
		Version:              holding.Version,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	holding.Version++

	return nil
}

// Delete removes a closed position.
func (r *HoldingRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	affected, err := queriesFor(tx).DeleteHolding(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrHoldingNotFound
	}

	return nil
}

// ListByUser lists a user's positions ordered by asset.
func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error) {
	rows, err := r.queries.ListHoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]*domain.Holding, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, rowToHolding(row))
	}

	return holdings, nil
}

func rowToHolding(row generated.Holding) *domain.Holding {
	return &domain.Holding{
		ID:                   row.ID,
		UserID:               row.UserID,
		AssetID:              row.AssetID,
		Quantity:             numericToDecimal(row.Quantity),
		ReservedQuantity:     numericToDecimal(row.ReservedQuantity),
		AveragePurchasePrice: numericToDecimal(row.AveragePurchasePrice),
		TotalInvested:        numericToDecimal(row.TotalInvested),
		CurrentValue:         numericToDecimal(row.CurrentValue),
		UnrealizedPnl:        numericToDecimal(row.UnrealizedPnl),
		RealizedPnl:          numericToDecimal(row.RealizedPnl),
		Version:              row.Version,
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
}
