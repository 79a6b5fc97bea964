package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/auth"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

const (
	// UserIDHeader and RoleHeader carry the caller when token auth is disabled.
	UserIDHeader = "X-User-ID"
	RoleHeader   = "X-User-Role"
)

// AuthMiddleware verifies the bearer token and stores the caller's principal
// in the request context.
func AuthMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				authFailure(w, m, "missing", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				authFailure(w, m, "malformed", "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				reason := "invalid"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired"
				}
				authFailure(w, m, reason, err.Error())
				return
			}

			ctx := domain.ContextWithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HeaderPrincipal trusts X-User-ID and X-User-Role. It is only mounted when
// token auth is disabled, for local development behind a trusted gateway.
// Requests without X-User-ID carry no principal.
func HeaderPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		role := domain.Role(r.Header.Get(RoleHeader))
		if role == "" {
			role = domain.RoleClient
		}
		if !role.IsValid() {
			writeError(w, http.StatusUnauthorized, "unauthorized", "unknown role")
			return
		}

		ctx := domain.ContextWithPrincipal(r.Context(), domain.Principal{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits callers whose role passes allowed, for example
// RequireRole(domain.Role.CanOperate).
func RequireRole(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := domain.PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			if !allowed(p.Role) {
				writeError(w, http.StatusForbidden, "insufficient permissions", domain.ErrInsufficientRole.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func authFailure(w http.ResponseWriter, m *metrics.Metrics, reason, details string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	writeError(w, http.StatusUnauthorized, "unauthorized", details)
}
