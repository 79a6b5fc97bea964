package domain

import (
	"context"
	"errors"
)

// Principal is the authenticated caller as asserted by the auth provider.
type Principal struct {
	UserID     string
	Role       Role
	Restricted bool
}

// Role represents a caller's access level
type Role string

const (
	// RoleAdmin operates the ledger: deposits, KYC notifications, audit reads
	RoleAdmin Role = "admin"

	// RoleClient places and cancels its own orders
	RoleClient Role = "client"

	// RoleVenue reports acknowledgements, rejections and fills
	RoleVenue Role = "venue"
)

// Valid roles
var validRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleClient: true,
	RoleVenue:  true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanTrade checks if the role can place orders for itself
func (r Role) CanTrade() bool {
	return r == RoleClient || r == RoleAdmin
}

// CanReportExecutions checks if the role can deliver venue events
func (r Role) CanReportExecutions() bool {
	return r == RoleVenue || r == RoleAdmin
}

// CanOperate checks if the role can use operator endpoints
func (r Role) CanOperate() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type principalKey struct{}
type requestIDKey struct{}

// ContextWithPrincipal stores the caller in ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller stored by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ContextWithRequestID stores the request correlation ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the correlation ID or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
