package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/adapter/http/dto"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

type kycServiceStub struct {
	fn func(ctx context.Context, userID string, status domain.KycStatus, at time.Time) (*domain.KycRecord, error)
}

func (s *kycServiceStub) HandleStatusChange(ctx context.Context, userID string, status domain.KycStatus, at time.Time) (*domain.KycRecord, error) {
	return s.fn(ctx, userID, status, at)
}

type auditServiceStub struct {
	fn func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

func (s *auditServiceStub) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	return s.fn(ctx, filter)
}

type reconServiceStub struct {
	report *usecase.ReconciliationReport
	err    error
}

func (s *reconServiceStub) GenerateReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.report, s.err
}

func TestAdminHandler_KycNotification(t *testing.T) {
	fixed := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	occurred := time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		body   string
		err    error
		wantAt time.Time
		status int
	}{
		{name: "defaults to receive time", body: `{"user_id":"u1","status":"approved"}`, wantAt: fixed, status: http.StatusOK},
		{name: "uses provider time", body: `{"user_id":"u1","status":"approved","occurred_at":"2025-03-03T11:00:00Z"}`, wantAt: occurred, status: http.StatusOK},
		{name: "unknown status", body: `{"user_id":"u1","status":"maybe"}`, err: domain.ErrValidation, wantAt: fixed, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAt time.Time
			h := NewAdminHandler(&kycServiceStub{
				fn: func(ctx context.Context, userID string, status domain.KycStatus, at time.Time) (*domain.KycRecord, error) {
					gotAt = at
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.KycRecord{UserID: userID, Status: status, UpdatedAt: at}, nil
				},
			}, nil, nil)
			h.now = func() time.Time { return fixed }

			rec := httptest.NewRecorder()
			h.KycNotification(rec, httptest.NewRequest(http.MethodPost, "/admin/kyc", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if !gotAt.Equal(tt.wantAt) {
				t.Fatalf("expected at %s, got %s", tt.wantAt, gotAt)
			}
		})
	}
}

func TestAdminHandler_ListAudit(t *testing.T) {
	var captured domain.AuditFilter
	h := NewAdminHandler(nil, &auditServiceStub{
		fn: func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
			captured = filter
			return []*domain.AuditEntry{{ID: "a-1", EventType: domain.AuditOrderPlaced, ResourceID: "o-1"}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/audit?resource_id=o-1&start=2025-01-01T00:00:00Z&limit=10", nil)
	rec := httptest.NewRecorder()
	h.ListAudit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ResourceID != "o-1" || captured.Limit != 10 {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if captured.StartDate == nil || captured.StartDate.Year() != 2025 {
		t.Fatalf("expected start date to be parsed, got %v", captured.StartDate)
	}
	if captured.EndDate != nil {
		t.Fatalf("expected no end date, got %v", captured.EndDate)
	}
}

func TestAdminHandler_ListAudit_BadTime(t *testing.T) {
	h := NewAdminHandler(nil, &auditServiceStub{
		fn: func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
			t.Fatal("audit service should not be reached")
			return nil, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.ListAudit(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?end=yesterday", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminHandler_Consistency(t *testing.T) {
	tests := []struct {
		name   string
		stub   *reconServiceStub
		status int
	}{
		{
			name:   "consistent",
			stub:   &reconServiceStub{report: &usecase.ReconciliationReport{Consistent: true, CheckedAt: time.Now()}},
			status: http.StatusOK,
		},
		{
			name: "drift",
			stub: &reconServiceStub{report: &usecase.ReconciliationReport{
				WalletDrift: []usecase.ReservationDrift{
					{ResourceID: "w-1", Recorded: decimal.NewFromInt(100), Expected: decimal.NewFromInt(90)},
				},
				CheckedAt: time.Now(),
			}},
			status: http.StatusConflict,
		},
		{
			name:   "failure",
			stub:   &reconServiceStub{err: errors.New("db down")},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAdminHandler(nil, nil, tt.stub)

			rec := httptest.NewRecorder()
			h.Consistency(rec, httptest.NewRequest(http.MethodGet, "/admin/ledger/consistency", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.stub.err != nil {
				return
			}

			var resp dto.ConsistencyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Consistent != tt.stub.report.Consistent {
				t.Fatalf("expected consistent=%v, got %v", tt.stub.report.Consistent, resp.Consistent)
			}
		})
	}
}
