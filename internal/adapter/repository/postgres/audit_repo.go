package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository. The table rejects
// UPDATE and DELETE, so entries can only be appended.
type AuditRepository struct {
	queries *generated.Queries
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{queries: generated.New(db)}
}

// Append inserts entry inside the transaction that made the change.
func (r *AuditRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	return queriesFor(tx).CreateAuditEntry(ctx, generated.CreateAuditEntryParams{
		ID:           entry.ID,
		EventType:    string(entry.EventType),
		Category:     string(entry.Category),
		Severity:     string(entry.Severity),
		ActorID:      entry.ActorID,
		ActorType:    string(entry.ActorType),
		RequestID:    entry.RequestID,
		Description:  entry.Description,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Metadata:     metadata,
		CreatedAt:    timeToPgTimestamptz(entry.CreatedAt),
	})
}

// List retrieves audit entries with filtering, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	rows, err := r.queries.ListAuditEntries(ctx, generated.ListAuditEntriesParams{
		ActorID:      filter.ActorID,
		EventType:    filter.EventType,
		Category:     filter.Category,
		ResourceType: filter.ResourceType,
		ResourceID:   filter.ResourceID,
		StartDate:    timePtrToPgTimestamptz(filter.StartDate),
		EndDate:      timePtrToPgTimestamptz(filter.EndDate),
		Limit:        int32(filter.Limit),
		Offset:       int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry := &domain.AuditEntry{
			ID:           row.ID,
			ActorID:      row.ActorID,
			ActorType:    domain.ActorType(row.ActorType),
			EventType:    domain.AuditEventType(row.EventType),
			Category:     domain.AuditCategory(row.Category),
			Severity:     domain.AuditSeverity(row.Severity),
			Description:  row.Description,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			RequestID:    row.RequestID,
			CreatedAt:    row.CreatedAt.Time,
		}
		if len(row.Metadata) > 0 {
			if err := json.Unmarshal(row.Metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("audit entry %s: %w", row.ID, err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
