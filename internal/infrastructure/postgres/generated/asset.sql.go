package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAsset = `-- name: CreateAsset :exec
INSERT INTO assets (id, symbol, name, quote_currency, tradable, min_quantity, max_quantity, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateAssetParams struct {
	ID            string             `json:"id"`
	Symbol        string             `json:"symbol"`
	Name          string             `json:"name"`
	QuoteCurrency string             `json:"quote_currency"`
	Tradable      bool               `json:"tradable"`
	MinQuantity   pgtype.Numeric     `json:"min_quantity"`
	MaxQuantity   pgtype.Numeric     `json:"max_quantity"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateAsset(ctx context.Context, arg CreateAssetParams) error {
	_, err := q.db.Exec(ctx, createAsset,
		arg.ID,
		arg.Symbol,
		arg.Name,
		arg.QuoteCurrency,
		arg.Tradable,
		arg.MinQuantity,
		arg.MaxQuantity,
		arg.CreatedAt,
	)
	return err
}

const getAssetByID = `-- name: GetAssetByID :one
SELECT id, symbol, name, quote_currency, tradable, min_quantity, max_quantity, created_at FROM assets WHERE id = $1
`

func (q *Queries) GetAssetByID(ctx context.Context, id string) (Asset, error) {
	row := q.db.QueryRow(ctx, getAssetByID, id)
	var i Asset
	err := row.Scan(
		&i.ID,
		&i.Symbol,
		&i.Name,
		&i.QuoteCurrency,
		&i.Tradable,
		&i.MinQuantity,
		&i.MaxQuantity,
		&i.CreatedAt,
	)
	return i, err
}

const listAssets = `-- name: ListAssets :many
SELECT id, symbol, name, quote_currency, tradable, min_quantity, max_quantity, created_at FROM assets ORDER BY symbol
`

func (q *Queries) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := q.db.Query(ctx, listAssets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Asset
	for rows.Next() {
		var i Asset
		if err := rows.Scan(
			&i.ID,
			&i.Symbol,
			&i.Name,
			&i.QuoteCurrency,
			&i.Tradable,
			&i.MinQuantity,
			&i.MaxQuantity,
			&i.CreatedAt,
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
