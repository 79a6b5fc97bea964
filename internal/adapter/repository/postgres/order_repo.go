package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct {
	queries *generated.Queries
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db generated.DBTX) *OrderRepository {
	return &OrderRepository{queries: generated.New(db)}
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, tx usecase.Transaction, order *domain.Order) error {
	limitPrice, stopPrice := domain.SpecPrices(order.Spec)

	err := queriesFor(tx).CreateOrder(ctx, generated.CreateOrderParams{
		ID:                    order.ID,
		UserID:                order.UserID,
		AssetID:               order.AssetID,
		Side:                  string(order.Side),
		OrderType:             string(order.Type()),
		Status:                string(order.Status),
		TimeInForce:           string(order.TimeInForce),
		Quantity:              decimalToNumeric(order.Quantity),
		FilledQuantity:        decimalToNumeric(order.FilledQuantity),
		RemainingQuantity:     decimalToNumeric(order.RemainingQuantity),
		LimitPrice:            decimalPtrToNumeric(limitPrice),
		StopPrice:             decimalPtrToNumeric(stopPrice),
		AverageExecutionPrice: decimalToNumeric(order.AverageExecutionPrice),
		ReservedAmount:        decimalToNumeric(order.ReservedAmount),
		WalletID:              textOrNull(order.WalletID),
		TotalValue:            decimalToNumeric(order.TotalValue),
		Commission:            decimalToNumeric(order.Commission),
		Fees:                  decimalToNumeric(order.Fees),
		NetAmount:             decimalToNumeric(order.NetAmount),
		RejectReason:          order.RejectReason,
		Version:               order.Version,
		PlacedAt:              timeToPgTimestamptz(order.PlacedAt),
		ExecutedAt:            timePtrToPgTimestamptz(order.ExecutedAt),
		CancelledAt:           timePtrToPgTimestamptz(order.CancelledAt),
		ExpiresAt:             timePtrToPgTimestamptz(order.ExpiresAt),
		ExpiredAt:             timePtrToPgTimestamptz(order.ExpiredAt),
		UpdatedAt:             timeToPgTimestamptz(order.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrConcurrentModification
	}

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row, err := r.queries.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, err
	}

	return rowToOrder(row)
}

// GetByIDForUpdate retrieves an order by ID with a FOR UPDATE lock.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	row, err := queriesFor(tx).GetOrderByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, err
	}

	return rowToOrder(row)
}

// Update writes the mutable order fields guarded by its version.
func (r *OrderRepository) Update(ctx context.Context, tx usecase.Transaction, order *domain.Order) error {
	affected, err := queriesFor(tx).UpdateOrder(ctx, generated.UpdateOrderParams{
		ID:                    order.ID,
		Status:                string(order.Status),
		FilledQuantity:        decimalToNumeric(order.FilledQuantity),
		RemainingQuantity:     decimalToNumeric(order.RemainingQuantity),
		AverageExecutionPrice: decimalToNumeric(order.AverageExecutionPrice),
		ReservedAmount:        decimalToNumeric(order.ReservedAmount),
		TotalValue:            decimalToNumeric(order.TotalValue),
		Commission:            decimalToNumeric(order.Commission),
		Fees:                  decimalToNumeric(order.Fees),
		NetAmount:             decimalToNumeric(order.NetAmount),
		RejectReason:          order.RejectReason,
		ExecutedAt:            timePtrToPgTimestamptz(order.ExecutedAt),
		CancelledAt:           timePtrToPgTimestamptz(order.CancelledAt),
		ExpiredAt:             timePtrToPgTimestamptz(order.ExpiredAt),
		UpdatedAt:             timeToPgTimestamptz(order.UpdatedAt),
		Version:               order.Version,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	order.Version++

	return nil
}

// Count counts orders matching filter, ignoring pagination.
func (r *OrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	return r.queries.CountOrders(ctx, generated.CountOrdersParams{
		UserID:  filter.UserID,
		Status:  string(filter.Status),
		Side:    string(filter.Side),
		AssetID: filter.AssetID,
	})
}

// List lists orders newest first. Empty filter fields match everything.
func (r *OrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	rows, err := r.queries.ListOrders(ctx, generated.ListOrdersParams{
		UserID:  filter.UserID,
		Status:  string(filter.Status),
		Side:    string(filter.Side),
		AssetID: filter.AssetID,
		Limit:   int32(filter.Limit),
		Offset:  int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := rowToOrder(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// ListExpired returns live DAY orders whose session has closed by cutoff.
func (r *OrderRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return r.queries.ListExpiredOrderIDs(ctx, generated.ListExpiredOrderIDsParams{
		Cutoff: timeToPgTimestamptz(cutoff),
		Limit:  int32(limit),
	})
}

func rowToOrder(row generated.Order) (*domain.Order, error) {
	spec, err := domain.NewOrderSpec(
		domain.OrderType(row.OrderType),
		numericToDecimalPtr(row.LimitPrice),
		numericToDecimalPtr(row.StopPrice),
	)
	if err != nil {
		return nil, fmt.Errorf("order %s: stored prices do not match type %q: %w", row.ID, row.OrderType, err)
	}

	return &domain.Order{
		ID:                    row.ID,
		UserID:                row.UserID,
		AssetID:               row.AssetID,
		Side:                  domain.OrderSide(row.Side),
		Spec:                  spec,
		Status:                domain.OrderStatus(row.Status),
		TimeInForce:           domain.TimeInForce(row.TimeInForce),
		Quantity:              numericToDecimal(row.Quantity),
		FilledQuantity:        numericToDecimal(row.FilledQuantity),
		RemainingQuantity:     numericToDecimal(row.RemainingQuantity),
		AverageExecutionPrice: numericToDecimal(row.AverageExecutionPrice),
		ReservedAmount:        numericToDecimal(row.ReservedAmount),
		WalletID:              row.WalletID.String,
		TotalValue:            numericToDecimal(row.TotalValue),
		Commission:            numericToDecimal(row.Commission),
		Fees:                  numericToDecimal(row.Fees),
		NetAmount:             numericToDecimal(row.NetAmount),
		RejectReason:          row.RejectReason,
		Version:               row.Version,
		PlacedAt:              row.PlacedAt.Time,
		ExecutedAt:            pgTimestamptzToTimePtr(row.ExecutedAt),
		CancelledAt:           pgTimestamptzToTimePtr(row.CancelledAt),
		ExpiresAt:             pgTimestamptzToTimePtr(row.ExpiresAt),
		ExpiredAt:             pgTimestamptzToTimePtr(row.ExpiredAt),
		UpdatedAt:             row.UpdatedAt.Time,
	}, nil
}
