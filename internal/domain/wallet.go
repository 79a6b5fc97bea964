package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's funds in a single currency, split into an available
// and a reserved part.
type Wallet struct {
	ID                string
	UserID            string
	Currency          string
	Available         decimal.Decimal
	Reserved          decimal.Decimal
	Total             decimal.Decimal
	Version           int64
	LastTransactionAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewWallet returns an empty wallet.
func NewWallet(id, userID, currency string, now time.Time) *Wallet {
	return &Wallet{
		ID:        id,
		UserID:    userID,
		Currency:  currency,
		Available: decimal.Zero,
		Reserved:  decimal.Zero,
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy safe to mutate.
func (w *Wallet) Clone() *Wallet {
	c := *w
	if w.LastTransactionAt != nil {
		t := *w.LastTransactionAt
		c.LastTransactionAt = &t
	}
	return &c
}

// CheckInvariant verifies total == available + reserved and non-negativity.
func (w *Wallet) CheckInvariant() error {
	if w.Available.IsNegative() || w.Reserved.IsNegative() || w.Total.IsNegative() {
		return &InvariantError{Entity: "wallet", ID: w.ID, Detail: "negative balance"}
	}
	if !w.Total.Equal(w.Available.Add(w.Reserved)) {
		return &InvariantError{Entity: "wallet", ID: w.ID, Detail: "total != available + reserved"}
	}
	return nil
}

// Reserve moves amount from available to reserved.
func (w *Wallet) Reserve(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(w.Available) {
		return ErrInsufficientBalance
	}
	w.Available = w.Available.Sub(amount)
	w.Reserved = w.Reserved.Add(amount)
	w.touch(now)
	return w.CheckInvariant()
}

// Release moves amount from reserved back to available.
func (w *Wallet) Release(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(w.Reserved) {
		return &InvariantError{Entity: "wallet", ID: w.ID, Detail: "release exceeds reserved balance"}
	}
	w.Available = w.Available.Add(amount)
	w.Reserved = w.Reserved.Sub(amount)
	w.touch(now)
	return w.CheckInvariant()
}

// Settle consumes reservedAmount from the reservation against actualCost.
// Any excess returns to available; a shortfall is taken from available.
func (w *Wallet) Settle(reservedAmount, actualCost decimal.Decimal, now time.Time) error {
	if reservedAmount.IsNegative() || actualCost.IsNegative() {
		return ErrInvalidAmount
	}
	if reservedAmount.GreaterThan(w.Reserved) {
		return &InvariantError{Entity: "wallet", ID: w.ID, Detail: "settle exceeds reserved balance"}
	}
	newAvailable := w.Available.Add(reservedAmount).Sub(actualCost)
	if newAvailable.IsNegative() {
		return ErrInsufficientBalance
	}
	w.Reserved = w.Reserved.Sub(reservedAmount)
	w.Available = newAvailable
	w.touch(now)
	return w.CheckInvariant()
}

// Credit adds amount to available funds.
func (w *Wallet) Credit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	w.Available = w.Available.Add(amount)
	w.touch(now)
	return w.CheckInvariant()
}

func (w *Wallet) touch(now time.Time) {
	w.Total = w.Available.Add(w.Reserved)
	w.LastTransactionAt = &now
	w.UpdatedAt = now
}

// BalanceState is the audit snapshot of a wallet.
func (w *Wallet) BalanceState() JSON {
	return JSON{
		"available": w.Available.String(),
		"reserved":  w.Reserved.String(),
		"total":     w.Total.String(),
		"version":   w.Version,
	}
}
