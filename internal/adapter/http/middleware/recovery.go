package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/iho/orderledger/internal/domain"
)

// Recovery middleware recovers from panics and logs the error.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", domain.RequestIDFromContext(r.Context())).
					Msg("panic recovered")

				writeError(w, http.StatusInternalServerError, "internal server error", "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
