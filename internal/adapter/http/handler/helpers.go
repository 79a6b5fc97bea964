package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/orderledger/internal/adapter/http/dto"
	"github.com/iho/orderledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with its mapped status and any structured detail
// the client needs to act on it.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	resp := dto.ErrorResponse{Error: message, Message: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	var closed *domain.MarketClosedError
	if errors.As(err, &closed) && !closed.NextOpen.IsZero() {
		next := closed.NextOpen
		resp.NextOpen = &next
	}

	var kyc *domain.KycRequiredError
	if errors.As(err, &kyc) {
		resp.KycStatus = string(kyc.Status)
		retryable := kyc.Retryable
		resp.Retryable = &retryable
	}

	status := mapDomainError(err)
	if status == http.StatusInternalServerError {
		// Internal detail stays in the logs.
		resp.Message = ""
	}
	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientHoldings):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMarketClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrKycRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountRestricted):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPriceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// principal returns the authenticated caller or writes 401.
func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok || p.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return domain.Principal{}, false
	}
	return p, true
}

// decodeJSON decodes the request body into v or writes 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// parseTimeQuery parses an optional RFC 3339 query parameter.
func parseTimeQuery(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "must be RFC 3339")
	}
	return &t, nil
}
