package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createWallet = `-- name: CreateWallet :exec
INSERT INTO wallets (id, user_id, currency, available, reserved, total, version, last_transaction_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateWalletParams struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Currency          string             `json:"currency"`
	Available         pgtype.Numeric     `json:"available"`
	Reserved          pgtype.Numeric     `json:"reserved"`
	Total             pgtype.Numeric     `json:"total"`
	Version           int64              `json:"version"`
	LastTransactionAt pgtype.Timestamptz `json:"last_transaction_at"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateWallet(ctx context.Context, arg CreateWalletParams) error {
	_, err := q.db.Exec(ctx, createWallet,
		arg.ID,
		arg.UserID,
		arg.Currency,
		arg.Available,
		arg.Reserved,
		arg.Total,
		arg.Version,
		arg.LastTransactionAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getWalletByID = `-- name: GetWalletByID :one
SELECT id, user_id, currency, available, reserved, total, version, last_transaction_at, created_at, updated_at FROM wallets WHERE id = $1
`

func (q *Queries) GetWalletByID(ctx context.Context, id string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByID, id)
	var i Wallet
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Currency,
		&i.Available,
		&i.Reserved,
		&i.Total,
		&i.Version,
		&i.LastTransactionAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getWalletByIDForUpdate = `-- name: GetWalletByIDForUpdate :one
SELECT id, user_id, currency, available, reserved, total, version, last_transaction_at, created_at, updated_at FROM wallets WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetWalletByIDForUpdate(ctx context.Context, id string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByIDForUpdate, id)
	var i Wallet
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Currency,
		&i.Available,
		&i.Reserved,
		&i.Total,
		&i.Version,
		&i.LastTransactionAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getWalletByUserCurrencyForUpdate = `-- name: GetWalletByUserCurrencyForUpdate :one
SELECT id, user_id, currency, available, reserved, total, version, last_transaction_at, created_at, updated_at FROM wallets
WHERE user_id = $1 AND currency = $2
FOR UPDATE
`

type GetWalletByUserCurrencyForUpdateParams struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

func (q *Queries) GetWalletByUserCurrencyForUpdate(ctx context.Context, arg GetWalletByUserCurrencyForUpdateParams) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByUserCurrencyForUpdate, arg.UserID, arg.Currency)
	var i Wallet
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Currency,
		&i.Available,
		&i.Reserved,
		&i.Total,
		&i.Version,
		&i.LastTransactionAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listWalletsByUser = `-- name: ListWalletsByUser :many
SELECT id, user_id, currency, available, reserved, total, version, last_transaction_at, created_at, updated_at FROM wallets
WHERE user_id = $1
ORDER BY currency
`

func (q *Queries) ListWalletsByUser(ctx context.Context, userID string) ([]Wallet, error) {
	rows, err := q.db.Query(ctx, listWalletsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Wallet
	for rows.Next() {
		var i Wallet
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Currency,
			&i.Available,
			&i.Reserved,
			&i.Total,
			&i.Version,
			&i.LastTransactionAt,
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

const updateWalletBalances = `-- name: UpdateWalletBalances :execrows
UPDATE wallets
SET available = $2, reserved = $3, total = $4, last_transaction_at = $5, updated_at = $6, version = version + 1
WHERE id = $1 AND version = $7
`

type UpdateWalletBalancesParams struct {
	ID                string             `json:"id"`
	Available         pgtype.Numeric     `json:"available"`
	Reserved          pgtype.Numeric     `json:"reserved"`
	Total             pgtype.Numeric     `json:"total"`
	LastTransactionAt pgtype.Timestamptz `json:"last_transaction_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
	Version           int64              `json:"version"`
}

func (q *Queries) UpdateWalletBalances(ctx context.Context, arg UpdateWalletBalancesParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateWalletBalances,
		arg.ID,
		arg.Available,
		arg.Reserved,
		arg.Total,
		arg.LastTransactionAt,
		arg.UpdatedAt,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
