package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createFill = `-- name: CreateFill :exec
INSERT INTO fills (id, order_id, execution_id, quantity, price, commission, executed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateFillParams struct {
	ID          string             `json:"id"`
	OrderID     string             `json:"order_id"`
	ExecutionID string             `json:"execution_id"`
	Quantity    pgtype.Numeric     `json:"quantity"`
	Price       pgtype.Numeric     `json:"price"`
	Commission  pgtype.Numeric     `json:"commission"`
	ExecutedAt  pgtype.Timestamptz `json:"executed_at"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateFill(ctx context.Context, arg CreateFillParams) error {
	_, err := q.db.Exec(ctx, createFill,
		arg.ID,
		arg.OrderID,
		arg.ExecutionID,
		arg.Quantity,
		arg.Price,
		arg.Commission,
		arg.ExecutedAt,
		arg.CreatedAt,
	)
	return err
}

const getFillByExecutionID = `-- name: GetFillByExecutionID :one
SELECT id, order_id, execution_id, quantity, price, commission, executed_at, created_at FROM fills WHERE execution_id = $1
`

func (q *Queries) GetFillByExecutionID(ctx context.Context, executionID string) (Fill, error) {
	row := q.db.QueryRow(ctx, getFillByExecutionID, executionID)
	var i Fill
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ExecutionID,
		&i.Quantity,
		&i.Price,
		&i.Commission,
		&i.ExecutedAt,
		&i.CreatedAt,
	)
	return i, err
}

const listFillsByOrder = `-- name: ListFillsByOrder :many
SELECT id, order_id, execution_id, quantity, price, commission, executed_at, created_at FROM fills
WHERE order_id = $1
ORDER BY executed_at, id
`

func (q *Queries) ListFillsByOrder(ctx context.Context, orderID string) ([]Fill, error) {
	rows, err := q.db.Query(ctx, listFillsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Fill
	for rows.Next() {
		var i Fill
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ExecutionID,
			&i.Quantity,
			&i.Price,
			&i.Commission,
			&i.ExecutedAt,
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
