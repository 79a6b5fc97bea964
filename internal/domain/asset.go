package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a tradable instrument priced in a single quote currency.
type Asset struct {
	ID            string
	Symbol        string
	Name          string
	QuoteCurrency string
	Tradable      bool
	MinQuantity   decimal.Decimal
	MaxQuantity   decimal.Decimal // zero means unbounded
	CreatedAt     time.Time
}

// CheckQuantity validates qty against the asset's bounds.
func (a *Asset) CheckQuantity(qty decimal.Decimal) *FieldError {
	if a.MinQuantity.IsPositive() && qty.LessThan(a.MinQuantity) {
		return &FieldError{Field: "quantity", Message: "below asset minimum of " + a.MinQuantity.String()}
	}
	if a.MaxQuantity.IsPositive() && qty.GreaterThan(a.MaxQuantity) {
		return &FieldError{Field: "quantity", Message: "above asset maximum of " + a.MaxQuantity.String()}
	}
	return nil
}
