package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
)

type walletServiceStub struct {
	listFn    func(ctx context.Context, userID string) ([]*domain.Wallet, error)
	depositFn func(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.Wallet, error)
}

func (s *walletServiceStub) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	return s.listFn(ctx, userID)
}

func (s *walletServiceStub) Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	return s.depositFn(ctx, userID, currency, amount)
}

type holdingServiceStub struct {
	listFn func(ctx context.Context, userID string) ([]*domain.Holding, error)
}

func (s *holdingServiceStub) ListHoldings(ctx context.Context, userID string) ([]*domain.Holding, error) {
	return s.listFn(ctx, userID)
}

func TestWalletHandler_ListWallets(t *testing.T) {
	var gotUser string
	h := NewWalletHandler(&walletServiceStub{
		listFn: func(ctx context.Context, userID string) ([]*domain.Wallet, error) {
			gotUser = userID
			return []*domain.Wallet{{
				ID:        "w-1",
				UserID:    userID,
				Currency:  "USD",
				Available: decimal.NewFromInt(800),
				Reserved:  decimal.NewFromInt(200),
				Total:     decimal.NewFromInt(1000),
			}}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.ListWallets(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/wallets", nil), clientU1))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "u1" {
		t.Fatalf("expected wallets of u1, got %q", gotUser)
	}

	var resp struct {
		Wallets []struct {
			Currency  string `json:"currency"`
			Available string `json:"available"`
			Reserved  string `json:"reserved"`
		} `json:"wallets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Wallets) != 1 || resp.Wallets[0].Available != "800" || resp.Wallets[0].Reserved != "200" {
		t.Fatalf("unexpected wallets %+v", resp.Wallets)
	}
}

func TestWalletHandler_ListWallets_Unauthenticated(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{}, nil)

	rec := httptest.NewRecorder()
	h.ListWallets(rec, httptest.NewRequest(http.MethodGet, "/wallets", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWalletHandler_ListHoldings(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "success", status: http.StatusOK},
		{name: "price feed down", err: domain.ErrPriceUnavailable, status: http.StatusServiceUnavailable},
		{name: "storage failure", err: errors.New("db down"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWalletHandler(nil, &holdingServiceStub{
				listFn: func(ctx context.Context, userID string) ([]*domain.Holding, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return []*domain.Holding{{ID: "h-1", UserID: userID, AssetID: "AAPL", Quantity: decimal.NewFromInt(10)}}, nil
				},
			})

			rec := httptest.NewRecorder()
			h.ListHoldings(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/holdings", nil), clientU1))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWalletHandler_Deposit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		depositErr error
		status     int
	}{
		{name: "success", body: `{"user_id":"u1","currency":"USD","amount":"250.50"}`, status: http.StatusCreated},
		{name: "non decimal amount", body: `{"user_id":"u1","currency":"USD","amount":"lots"}`, status: http.StatusBadRequest},
		{
			name:       "non positive amount",
			body:       `{"user_id":"u1","currency":"USD","amount":"-5"}`,
			depositErr: domain.ErrInvalidAmount,
			status:     http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAmount decimal.Decimal
			h := NewWalletHandler(&walletServiceStub{
				depositFn: func(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
					gotAmount = amount
					if tt.depositErr != nil {
						return nil, tt.depositErr
					}
					return &domain.Wallet{ID: "w-1", UserID: userID, Currency: currency, Available: amount, Total: amount}, nil
				},
			}, nil)

			rec := httptest.NewRecorder()
			h.Deposit(rec, httptest.NewRequest(http.MethodPost, "/admin/deposits", bytes.NewBufferString(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusCreated && !gotAmount.Equal(decimal.RequireFromString("250.50")) {
				t.Fatalf("unexpected amount %s", gotAmount)
			}
		})
	}
}
