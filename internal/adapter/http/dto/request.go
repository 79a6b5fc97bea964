package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

// PlaceOrderRequest represents a request to place an order. Prices and
// quantities are decimal strings.
type PlaceOrderRequest struct {
	AssetID     string  `json:"asset_id"`
	Side        string  `json:"side"`
	Type        string  `json:"type"`
	Quantity    string  `json:"quantity"`
	LimitPrice  *string `json:"limit_price,omitempty"`
	StopPrice   *string `json:"stop_price,omitempty"`
	TimeInForce string  `json:"time_in_force"`
}

// ToUseCaseInput converts to use case input. Unparseable numbers are reported
// together as one validation error.
func (r *PlaceOrderRequest) ToUseCaseInput() (usecase.PlaceOrderInput, error) {
	verr := &domain.ValidationError{}

	qty := parseDecimal(verr, "quantity", r.Quantity)
	limit := parseOptionalDecimal(verr, "limit_price", r.LimitPrice)
	stop := parseOptionalDecimal(verr, "stop_price", r.StopPrice)

	if err := verr.OrNil(); err != nil {
		return usecase.PlaceOrderInput{}, err
	}

	tif := domain.TimeInForce(r.TimeInForce)
	if tif == "" {
		tif = domain.TimeInForceDay
	}

	return usecase.PlaceOrderInput{
		AssetID:     r.AssetID,
		Side:        domain.OrderSide(r.Side),
		Type:        domain.OrderType(r.Type),
		Quantity:    qty,
		LimitPrice:  limit,
		StopPrice:   stop,
		TimeInForce: tif,
	}, nil
}

// RejectOrderRequest carries the venue's rejection reason.
type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// FillRequest is an execution report delivered over HTTP.
type FillRequest struct {
	OrderID     string     `json:"order_id"`
	ExecutionID string     `json:"execution_id,omitempty"`
	Quantity    string     `json:"quantity"`
	Price       string     `json:"price"`
	ExecutedAt  *time.Time `json:"executed_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *FillRequest) ToUseCaseInput() (usecase.FillInput, error) {
	verr := &domain.ValidationError{}

	qty := parseDecimal(verr, "quantity", r.Quantity)
	price := parseDecimal(verr, "price", r.Price)

	if err := verr.OrNil(); err != nil {
		return usecase.FillInput{}, err
	}

	in := usecase.FillInput{
		OrderID:     r.OrderID,
		ExecutionID: r.ExecutionID,
		Quantity:    qty,
		Price:       price,
	}
	if r.ExecutedAt != nil {
		in.ExecutedAt = *r.ExecutedAt
	}
	return in, nil
}

// DepositRequest funds a user's wallet.
type DepositRequest struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// ParseAmount returns the deposit amount.
func (r *DepositRequest) ParseAmount() (decimal.Decimal, error) {
	verr := &domain.ValidationError{}
	amount := parseDecimal(verr, "amount", r.Amount)
	return amount, verr.OrNil()
}

// KycNotificationRequest is a status change pushed by the verification provider.
type KycNotificationRequest struct {
	UserID     string     `json:"user_id"`
	Status     string     `json:"status"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

func parseDecimal(verr *domain.ValidationError, field, raw string) decimal.Decimal {
	if raw == "" {
		verr.Add(field, "is required")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(field, "must be a decimal string")
		return decimal.Zero
	}
	return d
}

func parseOptionalDecimal(verr *domain.ValidationError, field string, raw *string) *decimal.Decimal {
	if raw == nil || *raw == "" {
		return nil
	}
	d := parseDecimal(verr, field, *raw)
	return &d
}
