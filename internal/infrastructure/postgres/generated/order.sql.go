package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countOrders = `-- name: CountOrders :one
SELECT count(*) FROM orders
WHERE ($1::text = '' OR user_id = $1)
  AND ($2::text = '' OR status = $2)
  AND ($3::text = '' OR side = $3)
  AND ($4::text = '' OR asset_id = $4)
`

type CountOrdersParams struct {
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Side    string `json:"side"`
	AssetID string `json:"asset_id"`
}

func (q *Queries) CountOrders(ctx context.Context, arg CountOrdersParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders,
		arg.UserID,
		arg.Status,
		arg.Side,
		arg.AssetID,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createOrder = `-- name: CreateOrder :exec
INSERT INTO orders (id, user_id, asset_id, side, order_type, status, time_in_force, quantity, filled_quantity, remaining_quantity, limit_price, stop_price, average_execution_price, reserved_amount, wallet_id, total_value, commission, fees, net_amount, reject_reason, version, placed_at, executed_at, cancelled_at, expires_at, expired_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
`

type CreateOrderParams struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"user_id"`
	AssetID               string             `json:"asset_id"`
	Side                  string             `json:"side"`
	OrderType             string             `json:"order_type"`
	Status                string             `json:"status"`
	TimeInForce           string             `json:"time_in_force"`
	Quantity              pgtype.Numeric     `json:"quantity"`
	FilledQuantity        pgtype.Numeric     `json:"filled_quantity"`
	RemainingQuantity     pgtype.Numeric     `json:"remaining_quantity"`
	LimitPrice            pgtype.Numeric     `json:"limit_price"`
	StopPrice             pgtype.Numeric     `json:"stop_price"`
	AverageExecutionPrice pgtype.Numeric     `json:"average_execution_price"`
	ReservedAmount        pgtype.Numeric     `json:"reserved_amount"`
	WalletID              pgtype.Text        `json:"wallet_id"`
	TotalValue            pgtype.Numeric     `json:"total_value"`
	Commission            pgtype.Numeric     `json:"commission"`
	Fees                  pgtype.Numeric     `json:"fees"`
	NetAmount             pgtype.Numeric     `json:"net_amount"`
	RejectReason          string             `json:"reject_reason"`
	Version               int64              `json:"version"`
	PlacedAt              pgtype.Timestamptz `json:"placed_at"`
	ExecutedAt            pgtype.Timestamptz `json:"executed_at"`
	CancelledAt           pgtype.Timestamptz `json:"cancelled_at"`
	ExpiresAt             pgtype.Timestamptz `json:"expires_at"`
	ExpiredAt             pgtype.Timestamptz `json:"expired_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) error {
	_, err := q.db.Exec(ctx, createOrder,
		arg.ID,
		arg.UserID,
		arg.AssetID,
		arg.Side,
		arg.OrderType,
		arg.Status,
		arg.TimeInForce,
		arg.Quantity,
		arg.FilledQuantity,
		arg.RemainingQuantity,
		arg.LimitPrice,
		arg.StopPrice,
		arg.AverageExecutionPrice,
		arg.ReservedAmount,
		arg.WalletID,
		arg.TotalValue,
		arg.Commission,
		arg.Fees,
		arg.NetAmount,
		arg.RejectReason,
		arg.Version,
		arg.PlacedAt,
		arg.ExecutedAt,
		arg.CancelledAt,
		arg.ExpiresAt,
		arg.ExpiredAt,
		arg.UpdatedAt,
	)
	return err
}

const getOrderByID = `-- name: GetOrderByID :one
SELECT id, user_id, asset_id, side, order_type, status, time_in_force, quantity, filled_quantity, remaining_quantity, limit_price, stop_price, average_execution_price, reserved_amount, wallet_id, total_value, commission, fees, net_amount, reject_reason, version, placed_at, executed_at, cancelled_at, expires_at, expired_at, updated_at FROM orders WHERE id = $1
`

func (q *Queries) GetOrderByID(ctx context.Context, id string) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByID, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AssetID,
		&i.Side,
		&i.OrderType,
		&i.Status,
		&i.TimeInForce,
		&i.Quantity,
		&i.FilledQuantity,
		&i.RemainingQuantity,
		&i.LimitPrice,
		&i.StopPrice,
		&i.AverageExecutionPrice,
		&i.ReservedAmount,
		&i.WalletID,
		&i.TotalValue,
		&i.Commission,
		&i.Fees,
		&i.NetAmount,
		&i.RejectReason,
		&i.Version,
		&i.PlacedAt,
		&i.ExecutedAt,
		&i.CancelledAt,
		&i.ExpiresAt,
		&i.ExpiredAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderByIDForUpdate = `-- name: GetOrderByIDForUpdate :one
SELECT id, user_id, asset_id, side, order_type, status, time_in_force, quantity, filled_quantity, remaining_quantity, limit_price, stop_price, average_execution_price, reserved_amount, wallet_id, total_value, commission, fees, net_amount, reject_reason, version, placed_at, executed_at, cancelled_at, expires_at, expired_at, updated_at FROM orders WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetOrderByIDForUpdate(ctx context.Context, id string) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByIDForUpdate, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AssetID,
		&i.Side,
		&i.OrderType,
		&i.Status,
		&i.TimeInForce,
		&i.Quantity,
		&i.FilledQuantity,
		&i.RemainingQuantity,
		&i.LimitPrice,
		&i.StopPrice,
		&i.AverageExecutionPrice,
		&i.ReservedAmount,
		&i.WalletID,
		&i.TotalValue,
		&i.Commission,
		&i.Fees,
		&i.NetAmount,
		&i.RejectReason,
		&i.Version,
		&i.PlacedAt,
		&i.ExecutedAt,
		&i.CancelledAt,
		&i.ExpiresAt,
		&i.ExpiredAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listExpiredOrderIDs = `-- name: ListExpiredOrderIDs :many
SELECT id FROM orders
WHERE time_in_force = 'day'
  AND status IN ('open', 'partially_filled')
  AND expires_at <= $1
ORDER BY expires_at, id
LIMIT $2
`

type ListExpiredOrderIDsParams struct {
	Cutoff pgtype.Timestamptz `json:"cutoff"`
	Limit  int32              `json:"limit"`
}

func (q *Queries) ListExpiredOrderIDs(ctx context.Context, arg ListExpiredOrderIDsParams) ([]string, error) {
	rows, err := q.db.Query(ctx, listExpiredOrderIDs, arg.Cutoff, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrders = `-- name: ListOrders :many
SELECT id, user_id, asset_id, side, order_type, status, time_in_force, quantity, filled_quantity, remaining_quantity, limit_price, stop_price, average_execution_price, reserved_amount, wallet_id, total_value, commission, fees, net_amount, reject_reason, version, placed_at, executed_at, cancelled_at, expires_at, expired_at, updated_at FROM orders
WHERE ($1::text = '' OR user_id = $1)
  AND ($2::text = '' OR status = $2)
  AND ($3::text = '' OR side = $3)
  AND ($4::text = '' OR asset_id = $4)
ORDER BY placed_at DESC, id DESC
LIMIT $5 OFFSET $6
`

type ListOrdersParams struct {
	UserID  string `json:"user_id"`
	Status  string `json:"status"`
	Side    string `json:"side"`
	AssetID string `json:"asset_id"`
	Limit   int32  `json:"limit"`
	Offset  int32  `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.UserID,
		arg.Status,
		arg.Side,
		arg.AssetID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AssetID,
			&i.Side,
			&i.OrderType,
			&i.Status,
			&i.TimeInForce,
			&i.Quantity,
			&i.FilledQuantity,
			&i.RemainingQuantity,
			&i.LimitPrice,
			&i.StopPrice,
			&i.AverageExecutionPrice,
			&i.ReservedAmount,
			&i.WalletID,
			&i.TotalValue,
			&i.Commission,
			&i.Fees,
			&i.NetAmount,
			&i.RejectReason,
			&i.Version,
			&i.PlacedAt,
			&i.ExecutedAt,
			&i.CancelledAt,
			&i.ExpiresAt,
			&i.ExpiredAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrder = `-- name: UpdateOrder :execrows
UPDATE orders
SET status = $2, filled_quantity = $3, remaining_quantity = $4, average_execution_price = $5, reserved_amount = $6, total_value = $7, commission = $8, fees = $9, net_amount = $10, reject_reason = $11, executed_at = $12, cancelled_at = $13, expired_at = $14, updated_at = $15, version = version + 1
WHERE id = $1 AND version = $16
`

type UpdateOrderParams struct {
	ID                    string             `json:"id"`
	Status                string             `json:"status"`
	FilledQuantity        pgtype.Numeric     `json:"filled_quantity"`
	RemainingQuantity     pgtype.Numeric     `json:"remaining_quantity"`
	AverageExecutionPrice pgtype.Numeric     `json:"average_execution_price"`
	ReservedAmount        pgtype.Numeric     `json:"reserved_amount"`
	TotalValue            pgtype.Numeric     `json:"total_value"`
	Commission            pgtype.Numeric     `json:"commission"`
	Fees                  pgtype.Numeric     `json:"fees"`
	NetAmount             pgtype.Numeric     `json:"net_amount"`
	RejectReason          string             `json:"reject_reason"`
	ExecutedAt            pgtype.Timestamptz `json:"executed_at"`
	CancelledAt           pgtype.Timestamptz `json:"cancelled_at"`
	ExpiredAt             pgtype.Timestamptz `json:"expired_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
	Version               int64              `json:"version"`
}

func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateOrder,
		arg.ID,
		arg.Status,
		arg.FilledQuantity,
		arg.RemainingQuantity,
		arg.AverageExecutionPrice,
		arg.ReservedAmount,
		arg.TotalValue,
		arg.Commission,
		arg.Fees,
		arg.NetAmount,
		arg.RejectReason,
		arg.ExecutedAt,
		arg.CancelledAt,
		arg.ExpiredAt,
		arg.UpdatedAt,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
