package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	// MaxScale is the fractional precision of every stored amount and quantity.
	MaxScale = 8

	MaxAmount        = "1000000000000" // 1 trillion
	MaxRejectReason  = 512
	MaxExecutionIDLn = 128
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "HKD": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return NewValidationError("currency", fmt.Sprintf("%s is not a valid ISO 4217 currency code", currency))
	}

	return nil
}

// TruncateReason drops invalid UTF-8 and cuts s to MaxRejectReason characters.
func TruncateReason(s string) string {
	s = strings.ToValidUTF8(s, "")
	if utf8.RuneCountInString(s) <= MaxRejectReason {
		return s
	}
	return string([]rune(s)[:MaxRejectReason])
}

// ValidateAmount checks a monetary amount or quantity for sign, precision and bounds.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if msg := checkPositiveScaled(amount); msg != "" {
		return NewValidationError(field, msg)
	}
	return nil
}

// HasValidScale reports whether d fits in MaxScale fractional digits.
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MaxScale))
}

func checkPositiveScaled(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "must be positive"
	}
	if !HasValidScale(d) {
		return fmt.Sprintf("must have at most %d decimal places", MaxScale)
	}
	maxAmount := decimal.RequireFromString(MaxAmount)
	if d.GreaterThan(maxAmount) {
		return "exceeds maximum of " + MaxAmount
	}
	return ""
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
