package usecase

import (
	"context"
	"time"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// Actor identifies who caused an audited change.
type Actor struct {
	ID   string
	Type domain.ActorType
}

// ActorFromContext maps the authenticated principal to an audit actor.
// Calls without a principal are attributed to the system.
func ActorFromContext(ctx context.Context) Actor {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok || p.UserID == "" {
		return Actor{ID: systemActorID, Type: domain.ActorTypeSystem}
	}
	if p.Role == domain.RoleVenue {
		return Actor{ID: p.UserID, Type: domain.ActorTypeVenue}
	}
	return Actor{ID: p.UserID, Type: domain.ActorTypeUser}
}

// AuditRecorder appends entries inside the caller's transaction. A failed
// append returns an error so the caller rolls back the whole change.
type AuditRecorder struct {
	repo    AuditRepository
	idGen   IDGenerator
	metrics *metrics.Metrics
}

func NewAuditRecorder(repo AuditRepository, idGen IDGenerator, metrics *metrics.Metrics) *AuditRecorder {
	return &AuditRecorder{repo: repo, idGen: idGen, metrics: metrics}
}

// Append stamps entry with an ID, actor, request ID and time, then stores it.
func (r *AuditRecorder) Append(ctx context.Context, tx Transaction, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = r.idGen.Generate()
	}
	if entry.ActorID == "" {
		actor := ActorFromContext(ctx)
		entry.ActorID = actor.ID
		entry.ActorType = actor.Type
	}
	if entry.RequestID == "" {
		entry.RequestID = domain.RequestIDFromContext(ctx)
	}
	if entry.Severity == "" {
		entry.Severity = domain.AuditSeverityInfo
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := r.repo.Append(ctx, tx, entry); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.AuditEntries.WithLabelValues(string(entry.EventType)).Inc()
	}
	return nil
}

// List returns entries matching filter, newest first.
func (r *AuditRecorder) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return r.repo.List(ctx, filter)
}
