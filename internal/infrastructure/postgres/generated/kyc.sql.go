package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getKycRecord = `-- name: GetKycRecord :one
SELECT user_id, status, updated_at FROM kyc_records WHERE user_id = $1
`

func (q *Queries) GetKycRecord(ctx context.Context, userID string) (KycRecord, error) {
	row := q.db.QueryRow(ctx, getKycRecord, userID)
	var i KycRecord
	err := row.Scan(&i.UserID, &i.Status, &i.UpdatedAt)
	return i, err
}

const upsertKycRecord = `-- name: UpsertKycRecord :exec
INSERT INTO kyc_records (user_id, status, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
WHERE kyc_records.updated_at <= EXCLUDED.updated_at
`

type UpsertKycRecordParams struct {
	UserID    string             `json:"user_id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertKycRecord(ctx context.Context, arg UpsertKycRecordParams) error {
	_, err := q.db.Exec(ctx, upsertKycRecord, arg.UserID, arg.Status, arg.UpdatedAt)
	return err
}
