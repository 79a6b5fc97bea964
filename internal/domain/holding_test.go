package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newHolding(qty, avg string) *Holding {
	h := NewHolding("h1", "u1", "AAPL", time.Now())
	h.Quantity = decimal.RequireFromString(qty)
	h.AveragePurchasePrice = decimal.RequireFromString(avg)
	h.TotalInvested = h.Quantity.Mul(h.AveragePurchasePrice)
	return h
}

func TestHolding_Encumber(t *testing.T) {
	h := newHolding("100", "10")

	if err := h.Encumber(decimal.NewFromInt(60), time.Now()); err != nil {
		t.Fatalf("first encumber: %v", err)
	}

	// A second sell for more than the free remainder must fail even though
	// the raw quantity would cover it.
	err := h.Encumber(decimal.NewFromInt(60), time.Now())
	if !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if !h.FreeQuantity().Equal(decimal.NewFromInt(40)) {
		t.Errorf("free quantity = %s, want 40", h.FreeQuantity())
	}
}

func TestHolding_Release(t *testing.T) {
	h := newHolding("100", "10")
	_ = h.Encumber(decimal.NewFromInt(30), time.Now())

	if err := h.Release(decimal.NewFromInt(31), time.Now()); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if err := h.Release(decimal.NewFromInt(30), time.Now()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !h.ReservedQuantity.IsZero() {
		t.Errorf("reserved = %s, want 0", h.ReservedQuantity)
	}
}

func TestHolding_SettleBooksRealizedPnl(t *testing.T) {
	h := newHolding("100", "10")
	_ = h.Encumber(decimal.NewFromInt(40), time.Now())

	if err := h.Settle(decimal.NewFromInt(40), decimal.NewFromInt(12), time.Now()); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if !h.Quantity.Equal(decimal.NewFromInt(60)) {
		t.Errorf("quantity = %s, want 60", h.Quantity)
	}
	if !h.ReservedQuantity.IsZero() {
		t.Errorf("reserved = %s, want 0", h.ReservedQuantity)
	}
	if !h.RealizedPnl.Equal(decimal.NewFromInt(80)) {
		t.Errorf("realized pnl = %s, want 80", h.RealizedPnl)
	}
	if !h.TotalInvested.Equal(decimal.NewFromInt(600)) {
		t.Errorf("total invested = %s, want 600", h.TotalInvested)
	}
}

func TestHolding_SettleToZero(t *testing.T) {
	h := newHolding("5", "10")
	_ = h.Encumber(decimal.NewFromInt(5), time.Now())

	if err := h.Settle(decimal.NewFromInt(5), decimal.NewFromInt(9), time.Now()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !h.IsEmpty() {
		t.Fatalf("expected empty holding, got %s", h.Quantity)
	}
	if !h.TotalInvested.IsZero() || !h.AveragePurchasePrice.IsZero() {
		t.Errorf("expected cost basis cleared, got %s / %s", h.TotalInvested, h.AveragePurchasePrice)
	}
}

func TestHolding_AcquireAveragesPrice(t *testing.T) {
	h := NewHolding("h1", "u1", "AAPL", time.Now())

	_ = h.Acquire(decimal.NewFromInt(10), decimal.NewFromInt(100), time.Now())
	_ = h.Acquire(decimal.NewFromInt(10), decimal.NewFromInt(200), time.Now())

	if !h.AveragePurchasePrice.Equal(decimal.NewFromInt(15)) {
		t.Errorf("average = %s, want 15", h.AveragePurchasePrice)
	}

	h.MarkToMarket(decimal.NewFromInt(20))
	if !h.CurrentValue.Equal(decimal.NewFromInt(400)) || !h.UnrealizedPnl.Equal(decimal.NewFromInt(100)) {
		t.Errorf("mark to market = %s / %s, want 400 / 100", h.CurrentValue, h.UnrealizedPnl)
	}
}
