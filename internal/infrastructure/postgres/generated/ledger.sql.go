package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const holdingReservationDrift = `-- name: HoldingReservationDrift :many
SELECT h.id, h.reserved_quantity, COALESCE(o.expected, 0)::numeric AS expected
FROM holdings h
LEFT JOIN (
    SELECT user_id, asset_id, SUM(reserved_amount) AS expected
    FROM orders
    WHERE side = 'sell' AND status IN ('pending', 'open', 'partially_filled')
    GROUP BY user_id, asset_id
) o ON o.user_id = h.user_id AND o.asset_id = h.asset_id
WHERE h.reserved_quantity <> COALESCE(o.expected, 0)
   OR h.reserved_quantity > h.quantity
ORDER BY h.id
`

type HoldingReservationDriftRow struct {
	ID               string         `json:"id"`
	ReservedQuantity pgtype.Numeric `json:"reserved_quantity"`
	Expected         pgtype.Numeric `json:"expected"`
}

func (q *Queries) HoldingReservationDrift(ctx context.Context) ([]HoldingReservationDriftRow, error) {
	rows, err := q.db.Query(ctx, holdingReservationDrift)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []HoldingReservationDriftRow
	for rows.Next() {
		var i HoldingReservationDriftRow
		if err := rows.Scan(&i.ID, &i.ReservedQuantity, &i.Expected); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const walletReservationDrift = `-- name: WalletReservationDrift :many
SELECT w.id, w.reserved, COALESCE(o.expected, 0)::numeric AS expected
FROM wallets w
LEFT JOIN (
    SELECT wallet_id, SUM(reserved_amount) AS expected
    FROM orders
    WHERE side = 'buy' AND status IN ('pending', 'open', 'partially_filled')
    GROUP BY wallet_id
) o ON o.wallet_id = w.id
WHERE w.reserved <> COALESCE(o.expected, 0)
   OR w.total <> w.available + w.reserved
ORDER BY w.id
`

type WalletReservationDriftRow struct {
	ID       string         `json:"id"`
	Reserved pgtype.Numeric `json:"reserved"`
	Expected pgtype.Numeric `json:"expected"`
}

func (q *Queries) WalletReservationDrift(ctx context.Context) ([]WalletReservationDriftRow, error) {
	rows, err := q.db.Query(ctx, walletReservationDrift)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WalletReservationDriftRow
	for rows.Next() {
		var i WalletReservationDriftRow
		if err := rows.Scan(&i.ID, &i.Reserved, &i.Expected); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
