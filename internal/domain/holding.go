package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a user's position in one asset. ReservedQuantity is the part
// encumbered by open sell orders.
type Holding struct {
	ID                   string
	UserID               string
	AssetID              string
	Quantity             decimal.Decimal
	ReservedQuantity     decimal.Decimal
	AveragePurchasePrice decimal.Decimal
	TotalInvested        decimal.Decimal
	CurrentValue         decimal.Decimal
	UnrealizedPnl        decimal.Decimal
	RealizedPnl          decimal.Decimal
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewHolding returns an empty position. It is only persisted after Acquire.
func NewHolding(id, userID, assetID string, now time.Time) *Holding {
	return &Holding{
		ID:                   id,
		UserID:               userID,
		AssetID:              assetID,
		Quantity:             decimal.Zero,
		ReservedQuantity:     decimal.Zero,
		AveragePurchasePrice: decimal.Zero,
		TotalInvested:        decimal.Zero,
		CurrentValue:         decimal.Zero,
		UnrealizedPnl:        decimal.Zero,
		RealizedPnl:          decimal.Zero,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Clone returns a copy safe to mutate.
func (h *Holding) Clone() *Holding {
	c := *h
	return &c
}

// FreeQuantity is the quantity not encumbered by sell orders.
func (h *Holding) FreeQuantity() decimal.Decimal {
	return h.Quantity.Sub(h.ReservedQuantity)
}

// IsEmpty reports whether the position has been fully sold.
func (h *Holding) IsEmpty() bool {
	return h.Quantity.IsZero()
}

// CheckInvariant verifies 0 <= reserved <= quantity.
func (h *Holding) CheckInvariant() error {
	if h.Quantity.IsNegative() || h.ReservedQuantity.IsNegative() {
		return &InvariantError{Entity: "holding", ID: h.ID, Detail: "negative quantity"}
	}
	if h.ReservedQuantity.GreaterThan(h.Quantity) {
		return &InvariantError{Entity: "holding", ID: h.ID, Detail: "reserved quantity exceeds quantity"}
	}
	return nil
}

// Encumber reserves qty for a sell order.
func (h *Holding) Encumber(qty decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(h.FreeQuantity()) {
		return ErrInsufficientHoldings
	}
	h.ReservedQuantity = h.ReservedQuantity.Add(qty)
	h.UpdatedAt = now
	return h.CheckInvariant()
}

// Release returns encumbered quantity to the free pool.
func (h *Holding) Release(qty decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(h.ReservedQuantity) {
		return &InvariantError{Entity: "holding", ID: h.ID, Detail: "release exceeds reserved quantity"}
	}
	h.ReservedQuantity = h.ReservedQuantity.Sub(qty)
	h.UpdatedAt = now
	return h.CheckInvariant()
}

// Settle removes sold quantity from both the position and its reservation and
// books realized PnL against the average purchase price.
func (h *Holding) Settle(qty, price decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() || price.IsNegative() {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(h.ReservedQuantity) {
		return &InvariantError{Entity: "holding", ID: h.ID, Detail: "settle exceeds reserved quantity"}
	}
	costBasis := h.AveragePurchasePrice.Mul(qty)
	h.RealizedPnl = h.RealizedPnl.Add(price.Mul(qty).Sub(costBasis))
	h.Quantity = h.Quantity.Sub(qty)
	h.ReservedQuantity = h.ReservedQuantity.Sub(qty)
	h.TotalInvested = h.TotalInvested.Sub(costBasis)
	if h.Quantity.IsZero() {
		h.TotalInvested = decimal.Zero
		h.AveragePurchasePrice = decimal.Zero
	}
	h.UpdatedAt = now
	return h.CheckInvariant()
}

// Acquire adds bought quantity at cost (price × qty, commission excluded)
// and recomputes the average purchase price.
func (h *Holding) Acquire(qty, cost decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() || cost.IsNegative() {
		return ErrInvalidAmount
	}
	h.Quantity = h.Quantity.Add(qty)
	h.TotalInvested = h.TotalInvested.Add(cost)
	h.AveragePurchasePrice = h.TotalInvested.DivRound(h.Quantity, 8)
	h.UpdatedAt = now
	return h.CheckInvariant()
}

// MarkToMarket recomputes CurrentValue and UnrealizedPnl at price.
func (h *Holding) MarkToMarket(price decimal.Decimal) {
	h.CurrentValue = h.Quantity.Mul(price)
	h.UnrealizedPnl = h.CurrentValue.Sub(h.TotalInvested)
}

// QuantityState is the audit snapshot of a holding.
func (h *Holding) QuantityState() JSON {
	return JSON{
		"quantity":          h.Quantity.String(),
		"reserved_quantity": h.ReservedQuantity.String(),
		"average_price":     h.AveragePurchasePrice.String(),
		"realized_pnl":      h.RealizedPnl.String(),
		"version":           h.Version,
	}
}
