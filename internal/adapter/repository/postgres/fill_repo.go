package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// FillRepository implements usecase.FillRepository.
type FillRepository struct {
	queries *generated.Queries
}

// NewFillRepository creates a new FillRepository.
func NewFillRepository(db generated.DBTX) *FillRepository {
	return &FillRepository{queries: generated.New(db)}
}

// Create records an applied execution. The unique execution_id index turns a
// racing duplicate into a concurrent modification.
func (r *FillRepository) Create(ctx context.Context, tx usecase.Transaction, fill *domain.Fill) error {
	err := queriesFor(tx).CreateFill(ctx, generated.CreateFillParams{
		ID:          fill.ID,
		OrderID:     fill.OrderID,
		ExecutionID: fill.ExecutionID,
		Quantity:    decimalToNumeric(fill.Quantity),
		Price:       decimalToNumeric(fill.Price),
		Commission:  decimalToNumeric(fill.Commission),
		ExecutedAt:  timeToPgTimestamptz(fill.ExecutedAt),
		CreatedAt:   timeToPgTimestamptz(fill.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrConcurrentModification
	}

	return err
}

// GetByExecutionID looks up a fill inside tx.
func (r *FillRepository) GetByExecutionID(ctx context.Context, tx usecase.Transaction, executionID string) (*domain.Fill, error) {
	row, err := queriesFor(tx).GetFillByExecutionID(ctx, executionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFillNotFound
		}

		return nil, err
	}

	return rowToFill(row), nil
}

// ListByOrder lists fills of an order in execution order.
func (r *FillRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Fill, error) {
	rows, err := r.queries.ListFillsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fills := make([]*domain.Fill, 0, len(rows))
	for _, row := range rows {
		fills = append(fills, rowToFill(row))
	}

	return fills, nil
}

func rowToFill(row generated.Fill) *domain.Fill {
	return &domain.Fill{
		ID:          row.ID,
		OrderID:     row.OrderID,
		ExecutionID: row.ExecutionID,
		Quantity:    numericToDecimal(row.Quantity),
		Price:       numericToDecimal(row.Price),
		Commission:  numericToDecimal(row.Commission),
		ExecutedAt:  row.ExecutedAt.Time,
		CreatedAt:   row.CreatedAt.Time,
	}
}
