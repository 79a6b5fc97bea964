package postgres

import (
	"context"

	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// WalletDrift compares wallet reservations with live buy orders.
func (r *LedgerRepository) WalletDrift(ctx context.Context) ([]usecase.ReservationDrift, error) {
	rows, err := r.queries.WalletReservationDrift(ctx)
	if err != nil {
		return nil, err
	}

	drift := make([]usecase.ReservationDrift, 0, len(rows))
	for _, row := range rows {
		recorded, err := toDecimal(row.Reserved)
		if err != nil {
			return nil, err
		}
		expected, err := toDecimal(row.Expected)
		if err != nil {
			return nil, err
		}
		drift = append(drift, usecase.ReservationDrift{ResourceID: row.ID, Recorded: recorded, Expected: expected})
	}

	return drift, nil
}

// HoldingDrift compares holding reservations with live sell orders.
func (r *LedgerRepository) HoldingDrift(ctx context.Context) ([]usecase.ReservationDrift, error) {
	rows, err := r.queries.HoldingReservationDrift(ctx)
	if err != nil {
		return nil, err
	}

	drift := make([]usecase.ReservationDrift, 0, len(rows))
	for _, row := range rows {
		recorded, err := toDecimal(row.ReservedQuantity)
		if err != nil {
			return nil, err
		}
		expected, err := toDecimal(row.Expected)
		if err != nil {
			return nil, err
		}
		drift = append(drift, usecase.ReservationDrift{ResourceID: row.ID, Recorded: recorded, Expected: expected})
	}

	return drift, nil
}
