package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader  = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	processingPlaceholder = "processing"
)

// releaser is implemented by stores that can drop a claim, letting a client
// retry a failed request under the same key.
type releaser interface {
	Release(ctx context.Context, key string) error
}

// IdempotencyMiddleware replays the stored response of a mutating request
// that is retried with the same Idempotency-Key.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// keeps keys for a day.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = scopedKey(r, key)

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "idempotency check failed", "")
			return
		}

		if exists {
			if cached == nil || string(cached) == processingPlaceholder {
				writeError(w, http.StatusConflict, "request in progress", "a request with this idempotency key is still being processed")
				return
			}
			replay(w, cached)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Only successes are remembered; failures free the key for a retry.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			_ = m.store.Update(r.Context(), key, encodeCached(recorder.statusCode, recorder.body.Bytes()), m.ttl)
			return
		}
		if rel, ok := m.store.(releaser); ok {
			_ = rel.Release(r.Context(), key)
		}
	})
}

// scopedKey keeps two callers from colliding on the same client-chosen key.
func scopedKey(r *http.Request, key string) string {
	if p, ok := domain.PrincipalFromContext(r.Context()); ok {
		return p.UserID + ":" + key
	}
	return "anonymous:" + key
}

// Cached responses are stored as "<status>\n<body>".
func encodeCached(status int, body []byte) []byte {
	out := make([]byte, 0, len(body)+4)
	out = strconv.AppendInt(out, int64(status), 10)
	out = append(out, '\n')
	return append(out, body...)
}

func decodeCached(raw []byte) (int, []byte) {
	if i := bytes.IndexByte(raw, '\n'); i > 0 {
		if status, err := strconv.Atoi(string(raw[:i])); err == nil {
			return status, raw[i+1:]
		}
	}
	return http.StatusOK, raw
}

func replay(w http.ResponseWriter, cached []byte) {
	status, body := decodeCached(cached)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Replay", "true")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
