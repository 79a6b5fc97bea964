package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/orderledger/internal/adapter/http/dto"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

// KycService defines the behavior needed for provider notifications.
type KycService interface {
	HandleStatusChange(ctx context.Context, userID string, status domain.KycStatus, at time.Time) (*domain.KycRecord, error)
}

// AuditService defines the behavior needed for audit reads.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

// ReconciliationService defines the behavior needed for consistency checks.
type ReconciliationService interface {
	GenerateReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	kycUC   KycService
	auditUC AuditService
	reconUC ReconciliationService
	now     func() time.Time
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(kycUC KycService, auditUC AuditService, reconUC ReconciliationService) *AdminHandler {
	return &AdminHandler{kycUC: kycUC, auditUC: auditUC, reconUC: reconUC, now: time.Now}
}

// KycNotification stores a verification status pushed by the provider.
func (h *AdminHandler) KycNotification(w http.ResponseWriter, r *http.Request) {
	var req dto.KycNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	at := h.now()
	if req.OccurredAt != nil {
		at = *req.OccurredAt
	}

	record, err := h.kycUC.HandleStatusChange(r.Context(), req.UserID, domain.KycStatus(req.Status), at)
	if err != nil {
		writeDomainError(w, "failed to record kyc status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.KycRecordFromDomain(record))
}

// ListAudit queries the audit trail.
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		ActorID:      q.Get("actor_id"),
		EventType:    q.Get("event_type"),
		Category:     q.Get("category"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	}

	var err error
	if filter.StartDate, err = parseTimeQuery(r, "start"); err != nil {
		writeDomainError(w, "invalid audit filter", err)
		return
	}
	if filter.EndDate, err = parseTimeQuery(r, "end"); err != nil {
		writeDomainError(w, "invalid audit filter", err)
		return
	}

	entries, err := h.auditUC.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list audit entries", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": dto.AuditEntriesFromDomain(entries)})
}

// Consistency reports reservation drift across the ledger. Drift answers 409.
func (h *AdminHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconUC.GenerateReport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", "")
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ConsistencyFromReport(report))
}
