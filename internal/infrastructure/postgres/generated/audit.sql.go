package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAuditEntry = `-- name: CreateAuditEntry :exec
INSERT INTO audit_entries (id, event_type, category, severity, actor_id, actor_type, request_id, description, resource_type, resource_id, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type CreateAuditEntryParams struct {
	ID           string             `json:"id"`
	EventType    string             `json:"event_type"`
	Category     string             `json:"category"`
	Severity     string             `json:"severity"`
	ActorID      string             `json:"actor_id"`
	ActorType    string             `json:"actor_type"`
	RequestID    string             `json:"request_id"`
	Description  string             `json:"description"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	Metadata     []byte             `json:"metadata"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) error {
	_, err := q.db.Exec(ctx, createAuditEntry,
		arg.ID,
		arg.EventType,
		arg.Category,
		arg.Severity,
		arg.ActorID,
		arg.ActorType,
		arg.RequestID,
		arg.Description,
		arg.ResourceType,
		arg.ResourceID,
		arg.Metadata,
		arg.CreatedAt,
	)
	return err
}

const listAuditEntries = `-- name: ListAuditEntries :many
SELECT id, event_type, category, severity, actor_id, actor_type, request_id, description, resource_type, resource_id, metadata, created_at FROM audit_entries
WHERE ($1::text = '' OR actor_id = $1)
  AND ($2::text = '' OR event_type = $2)
  AND ($3::text = '' OR category = $3)
  AND ($4::text = '' OR resource_type = $4)
  AND ($5::text = '' OR resource_id = $5)
  AND ($6::timestamptz IS NULL OR created_at >= $6)
  AND ($7::timestamptz IS NULL OR created_at < $7)
ORDER BY created_at DESC, id DESC
LIMIT $8 OFFSET $9
`

type ListAuditEntriesParams struct {
	ActorID      string             `json:"actor_id"`
	EventType    string             `json:"event_type"`
	Category     string             `json:"category"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	StartDate    pgtype.Timestamptz `json:"start_date"`
	EndDate      pgtype.Timestamptz `json:"end_date"`
	Limit        int32              `json:"limit"`
	Offset       int32              `json:"offset"`
}

func (q *Queries) ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]AuditEntry, error) {
	rows, err := q.db.Query(ctx, listAuditEntries,
		arg.ActorID,
		arg.EventType,
		arg.Category,
		arg.ResourceType,
		arg.ResourceID,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuditEntry
	for rows.Next() {
		var i AuditEntry
		if err := rows.Scan(
			&i.ID,
			&i.EventType,
			&i.Category,
			&i.Severity,
			&i.ActorID,
			&i.ActorType,
			&i.RequestID,
			&i.Description,
			&i.ResourceType,
			&i.ResourceID,
			&i.Metadata,
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
