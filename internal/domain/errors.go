package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// Category sentinels. Specific errors wrap one of these so adapters can map
	// whole families with errors.Is.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// Not found errors
	ErrWalletNotFound  = fmt.Errorf("wallet %w", ErrNotFound)
	ErrHoldingNotFound = fmt.Errorf("holding %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrAssetNotFound   = fmt.Errorf("asset %w", ErrNotFound)
	ErrFillNotFound    = fmt.Errorf("fill %w", ErrNotFound)
	ErrKycNotFound     = fmt.Errorf("kyc record %w", ErrNotFound)

	// Funds and holdings gates
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// Policy gates
	ErrMarketClosed      = errors.New("market closed")
	ErrKycRequired       = errors.New("kyc approval required")
	ErrAccountRestricted = errors.New("account is restricted from trading")

	// ErrPriceUnavailable means no reference price is known for a market buy.
	ErrPriceUnavailable = errors.New("reference price unavailable")

	// Lifecycle errors
	ErrInvalidStateTransition = errors.New("invalid order state transition")
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInvariantViolation signals ledger corruption. It is never a client error.
	ErrInvariantViolation = errors.New("ledger invariant violation")

	ErrInvalidAmount = errors.New("amount must be positive")
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects malformed or incomplete order parameters.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Empty reports whether no field errors were collected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns nil when nothing was collected, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MarketClosedError carries the next session open so callers can tell the
// client when to retry.
type MarketClosedError struct {
	NextOpen time.Time
}

func (e *MarketClosedError) Error() string {
	return fmt.Sprintf("market closed, next session opens at %s", e.NextOpen.Format(time.RFC3339))
}

func (e *MarketClosedError) Unwrap() error { return ErrMarketClosed }

// KycRequiredError carries the caller's current verification status.
type KycRequiredError struct {
	Status    KycStatus
	Retryable bool
}

func (e *KycRequiredError) Error() string {
	if !e.Retryable {
		return fmt.Sprintf("kyc status %s blocks trading, contact support", e.Status)
	}
	return fmt.Sprintf("kyc approval required, current status %s", e.Status)
}

func (e *KycRequiredError) Unwrap() error { return ErrKycRequired }

// InvariantError wraps ErrInvariantViolation with the offending entity.
type InvariantError struct {
	Entity string
	ID     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.Entity, e.ID, ErrInvariantViolation, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }
