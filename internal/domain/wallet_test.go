package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newFundedWallet(available string) *Wallet {
	w := NewWallet("w1", "u1", "USD", time.Now())
	w.Available = decimal.RequireFromString(available)
	w.Total = w.Available
	return w
}

func TestWallet_Reserve(t *testing.T) {
	tests := []struct {
		name          string
		available     string
		amount        string
		wantErr       error
		wantAvailable string
		wantReserved  string
	}{
		{
			name:          "reserve part of balance",
			available:     "1000",
			amount:        "400",
			wantAvailable: "600",
			wantReserved:  "400",
		},
		{
			name:          "reserve exact balance",
			available:     "100",
			amount:        "100",
			wantAvailable: "0",
			wantReserved:  "100",
		},
		{
			name:          "reserve more than balance",
			available:     "100",
			amount:        "150",
			wantErr:       ErrInsufficientBalance,
			wantAvailable: "100",
			wantReserved:  "0",
		},
		{
			name:          "zero amount",
			available:     "100",
			amount:        "0",
			wantErr:       ErrInvalidAmount,
			wantAvailable: "100",
			wantReserved:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFundedWallet(tt.available)

			err := w.Reserve(decimal.RequireFromString(tt.amount), time.Now())

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !w.Available.Equal(decimal.RequireFromString(tt.wantAvailable)) {
				t.Errorf("available = %s, want %s", w.Available, tt.wantAvailable)
			}
			if !w.Reserved.Equal(decimal.RequireFromString(tt.wantReserved)) {
				t.Errorf("reserved = %s, want %s", w.Reserved, tt.wantReserved)
			}
			if err := w.CheckInvariant(); err != nil {
				t.Errorf("invariant broken: %v", err)
			}
		})
	}
}

func TestWallet_ReserveReleaseRoundTrip(t *testing.T) {
	w := newFundedWallet("1000")
	before := w.Clone()
	amount := decimal.RequireFromString("123.45678901")

	if err := w.Reserve(amount, time.Now()); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := w.Release(amount, time.Now()); err != nil {
		t.Fatalf("release: %v", err)
	}

	if !w.Available.Equal(before.Available) || !w.Reserved.Equal(before.Reserved) || !w.Total.Equal(before.Total) {
		t.Errorf("round trip changed balances: got %s/%s/%s", w.Available, w.Reserved, w.Total)
	}
}

func TestWallet_ReleaseMoreThanReserved(t *testing.T) {
	w := newFundedWallet("100")
	if err := w.Reserve(decimal.NewFromInt(10), time.Now()); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err := w.Release(decimal.NewFromInt(11), time.Now())

	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if !w.Reserved.Equal(decimal.NewFromInt(10)) {
		t.Errorf("reserved changed on failed release: %s", w.Reserved)
	}
}

func TestWallet_Settle(t *testing.T) {
	tests := []struct {
		name          string
		reserved      string
		actual        string
		wantErr       error
		wantAvailable string
	}{
		{name: "cost below estimate refunds excess", reserved: "500", actual: "480", wantAvailable: "520"},
		{name: "cost equals estimate", reserved: "500", actual: "500", wantAvailable: "500"},
		{name: "shortfall covered by available", reserved: "500", actual: "520", wantAvailable: "480"},
		{name: "shortfall not covered", reserved: "500", actual: "1001", wantErr: ErrInsufficientBalance, wantAvailable: "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFundedWallet("1000")
			if err := w.Reserve(decimal.RequireFromString(tt.reserved), time.Now()); err != nil {
				t.Fatalf("reserve: %v", err)
			}

			err := w.Settle(decimal.RequireFromString(tt.reserved), decimal.RequireFromString(tt.actual), time.Now())

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !w.Available.Equal(decimal.RequireFromString(tt.wantAvailable)) {
				t.Errorf("available = %s, want %s", w.Available, tt.wantAvailable)
			}
			if err := w.CheckInvariant(); err != nil {
				t.Errorf("invariant broken: %v", err)
			}
		})
	}
}

func TestWallet_CheckInvariant(t *testing.T) {
	w := newFundedWallet("100")
	w.Total = decimal.NewFromInt(99)

	if err := w.CheckInvariant(); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}
