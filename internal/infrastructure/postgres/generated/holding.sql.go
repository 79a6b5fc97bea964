package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createHolding = `-- name: CreateHolding :exec
INSERT INTO holdings (id, user_id, asset_id, quantity, reserved_quantity, average_purchase_price, total_invested, current_value, unrealized_pnl, realized_pnl, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

type CreateHoldingParams struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id"`
	AssetID              string             `json:"asset_id"`
	Quantity             pgtype.Numeric     `json:"quantity"`
	ReservedQuantity     pgtype.Numeric     `json:"reserved_quantity"`
	AveragePurchasePrice pgtype.Numeric     `json:"average_purchase_price"`
	TotalInvested        pgtype.Numeric     `json:"total_invested"`
	CurrentValue         pgtype.Numeric     `json:"current_value"`
	UnrealizedPnl        pgtype.Numeric     `json:"unrealized_pnl"`
	RealizedPnl          pgtype.Numeric     `json:"realized_pnl"`
	Version              int64              `json:"version"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateHolding(ctx context.Context, arg CreateHoldingParams) error {
	_, err := q.db.Exec(ctx, createHolding,
		arg.ID,
		arg.UserID,
		arg.AssetID,
		arg.Quantity,
		arg.ReservedQuantity,
		arg.AveragePurchasePrice,
		arg.TotalInvested,
		arg.CurrentValue,
		arg.UnrealizedPnl,
		arg.RealizedPnl,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteHolding = `-- name: DeleteHolding :execrows
DELETE FROM holdings WHERE id = $1
`

func (q *Queries) DeleteHolding(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteHolding, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getHoldingByID = `-- name: GetHoldingByID :one
SELECT id, user_id, asset_id, quantity, reserved_quantity, average_purchase_price, total_invested, current_value, unrealized_pnl, realized_pnl, version, created_at, updated_at FROM holdings WHERE id = $1
`

func (q *Queries) GetHoldingByID(ctx context.Context, id string) (Holding, error) {
	row := q.db.QueryRow(ctx, getHoldingByID, id)
	var i Holding
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AssetID,
		&i.Quantity,
		&i.ReservedQuantity,
		&i.AveragePurchasePrice,
		&i.TotalInvested,
		&i.CurrentValue,
		&i.UnrealizedPnl,
		&i.RealizedPnl,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getHoldingByIDForUpdate = `-- name: GetHoldingByIDForUpdate :one
SELECT id, user_id, asset_id, quantity, reserved_quantity, average_purchase_price, total_invested, current_value, unrealized_pnl, realized_pnl, version, created_at, updated_at FROM holdings WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetHoldingByIDForUpdate(ctx context.Context, id string) (Holding, error) {
	row := q.db.QueryRow(ctx, getHoldingByIDForUpdate, id)
	var i Holding
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AssetID,
		&i.Quantity,
		&i.ReservedQuantity,
		&i.AveragePurchasePrice,
		&i.TotalInvested,
		&i.CurrentValue,
		&i.UnrealizedPnl,
		&i.RealizedPnl,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getHoldingByUserAssetForUpdate = `-- name: GetHoldingByUserAssetForUpdate :one
SELECT id, user_id, asset_id, quantity, reserved_quantity, average_purchase_price, total_invested, current_value, unrealized_pnl, realized_pnl, version, created_at, updated_at FROM holdings
WHERE user_id = $1 AND asset_id = $2
FOR UPDATE
`

type GetHoldingByUserAssetForUpdateParams struct {
	UserID  string `json:"user_id"`
	AssetID string `json:"asset_id"`
}

func (q *Queries) GetHoldingByUserAssetForUpdate(ctx context.Context, arg GetHoldingByUserAssetForUpdateParams) (Holding, error) {
	row := q.db.QueryRow(ctx, getHoldingByUserAssetForUpdate, arg.UserID, arg.AssetID)
	var i Holding
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AssetID,
		&i.Quantity,
		&i.ReservedQuantity,
		&i.AveragePurchasePrice,
		&i.TotalInvested,
		&i.CurrentValue,
		&i.UnrealizedPnl,
		&i.RealizedPnl,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listHoldingsByUser = `-- name: ListHoldingsByUser :many
SELECT id, user_id, asset_id, quantity, reserved_quantity, average_purchase_price, total_invested, current_value, unrealized_pnl, realized_pnl, version, created_at, updated_at FROM holdings
WHERE user_id = $1
ORDER BY asset_id
`

func (q *Queries) ListHoldingsByUser(ctx context.Context, userID string) ([]Holding, error) {
	rows, err := q.db.Query(ctx, listHoldingsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Holding
	for rows.Next() {
		var i Holding
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.AssetID,
			&i.Quantity,
			&i.ReservedQuantity,
			&i.AveragePurchasePrice,
			&i.TotalInvested,
			&i.CurrentValue,
			&i.UnrealizedPnl,
			&i.RealizedPnl,
			&i.Version,
			&i.CreatedAt,
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

const updateHolding = `-- name: UpdateHolding :execrows
UPDATE holdings
SET quantity = $2, reserved_quantity = $3, average_purchase_price = $4, total_invested = $5,
    current_value = $6, unrealized_pnl = $7, realized_pnl = $8, updated_at = $9, version = version + 1
WHERE id = $1 AND version = $10
`

type UpdateHoldingParams struct {
	ID                   string             `json:"id"`
	Quantity             pgtype.Numeric     `json:"quantity"`
	ReservedQuantity     pgtype.Numeric     `json:"reserved_quantity"`
	AveragePurchasePrice pgtype.Numeric     `json:"average_purchase_price"`
	TotalInvested        pgtype.Numeric     `json:"total_invested"`
	CurrentValue         pgtype.Numeric     `json:"current_value"`
	UnrealizedPnl        pgtype.Numeric     `json:"unrealized_pnl"`
	RealizedPnl          pgtype.Numeric     `json:"realized_pnl"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
	Version              int64              `json:"version"`
}

func (q *Queries) UpdateHolding(ctx context.Context, arg UpdateHoldingParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateHolding,
		arg.ID,
		arg.Quantity,
		arg.ReservedQuantity,
		arg.AveragePurchasePrice,
		arg.TotalInvested,
		arg.CurrentValue,
		arg.UnrealizedPnl,
		arg.RealizedPnl,
		arg.UpdatedAt,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
