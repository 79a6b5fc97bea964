package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry is one immutable record of a state change. Entries are only
// ever appended.
type AuditEntry struct {
	ID           string
	ActorID      string // user, venue or system component that caused the change
	ActorType    ActorType
	EventType    AuditEventType
	Category     AuditCategory
	Severity     AuditSeverity
	Description  string
	ResourceType string
	ResourceID   string
	Metadata     AuditMetadata
	RequestID    string
	CreatedAt    time.Time
}

// AuditMetadata carries the before/after snapshot of the affected entity.
type AuditMetadata struct {
	Before JSON `json:"before,omitempty"`
	After  JSON `json:"after,omitempty"`
	Extra  JSON `json:"extra,omitempty"`
}

// JSON is a type alias for JSON data
type JSON map[string]any

// ActorType identifies who caused an audited change.
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
	ActorTypeVenue  ActorType = "venue"
)

// AuditEventType names the audited action.
type AuditEventType string

const (
	// Wallet events
	AuditWalletReserved  AuditEventType = "wallet.reserved"
	AuditWalletReleased  AuditEventType = "wallet.released"
	AuditWalletSettled   AuditEventType = "wallet.settled"
	AuditWalletDeposited AuditEventType = "wallet.deposited"

	// Holding events
	AuditHoldingEncumbered AuditEventType = "holding.encumbered"
	AuditHoldingReleased   AuditEventType = "holding.released"
	AuditHoldingSettled    AuditEventType = "holding.settled"
	AuditHoldingAcquired   AuditEventType = "holding.acquired"

	// Order events
	AuditOrderPlaced       AuditEventType = "order.placed"
	AuditOrderAcknowledged AuditEventType = "order.acknowledged"
	AuditOrderFilled       AuditEventType = "order.filled"
	AuditOrderCancelled    AuditEventType = "order.cancelled"
	AuditOrderRejected     AuditEventType = "order.rejected"
	AuditOrderExpired      AuditEventType = "order.expired"

	// Compliance events
	AuditKycStatusChanged AuditEventType = "kyc.status_changed"
)

// AuditCategory groups event types for filtering.
type AuditCategory string

const (
	AuditCategoryWallet     AuditCategory = "wallet"
	AuditCategoryHolding    AuditCategory = "holding"
	AuditCategoryOrder      AuditCategory = "order"
	AuditCategoryCompliance AuditCategory = "compliance"
)

// AuditSeverity ranks entries for operators.
type AuditSeverity string

const (
	AuditSeverityInfo     AuditSeverity = "info"
	AuditSeverityWarning  AuditSeverity = "warning"
	AuditSeverityCritical AuditSeverity = "critical"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit entries
type AuditFilter struct {
	ActorID      string
	EventType    string
	Category     string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
