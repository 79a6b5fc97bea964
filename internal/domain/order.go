package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// IsValid reports whether s is a known side.
func (s OrderSide) IsValid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// OrderStatus is a lifecycle state.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
	OrderStatusExpired         OrderStatus = "expired"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {
		OrderStatusOpen, OrderStatusPartiallyFilled, OrderStatusFilled,
		OrderStatusCancelled, OrderStatusRejected,
	},
	OrderStatusOpen: {
		OrderStatusPartiallyFilled, OrderStatusFilled,
		OrderStatusCancelled, OrderStatusExpired,
	},
	OrderStatusPartiallyFilled: {
		OrderStatusPartiallyFilled, OrderStatusFilled,
		OrderStatusCancelled, OrderStatusExpired,
	},
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected, OrderStatusExpired:
		return true
	}
	return false
}

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusOpen, OrderStatusPartiallyFilled:
		return true
	}
	return s.IsTerminal()
}

// CanTransition reports whether from → to is a legal lifecycle edge.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TimeInForce governs how long an unfilled order stays live.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
)

// IsValid reports whether t is a known time-in-force.
func (t TimeInForce) IsValid() bool {
	return t == TimeInForceDay || t == TimeInForceGTC
}

// Order is a trade ticket.
type Order struct {
	ID                    string
	UserID                string
	AssetID               string
	Side                  OrderSide
	Spec                  OrderSpec
	Status                OrderStatus
	TimeInForce           TimeInForce
	Quantity              decimal.Decimal
	FilledQuantity        decimal.Decimal
	RemainingQuantity     decimal.Decimal
	AverageExecutionPrice decimal.Decimal
	// ReservedAmount is the encumbrance still held for the unfilled remainder:
	// quote currency for buys, asset quantity for sells.
	ReservedAmount decimal.Decimal
	WalletID       string
	TotalValue     decimal.Decimal
	Commission     decimal.Decimal
	Fees           decimal.Decimal
	NetAmount      decimal.Decimal
	RejectReason   string
	Version        int64
	PlacedAt       time.Time
	ExecutedAt     *time.Time
	CancelledAt    *time.Time
	ExpiresAt      *time.Time
	ExpiredAt      *time.Time
	UpdatedAt      time.Time
}

// Type returns the variant's order type.
func (o *Order) Type() OrderType {
	if o.Spec == nil {
		return ""
	}
	return o.Spec.Type()
}

// Clone returns a copy safe to mutate.
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

// CheckInvariant verifies 0 <= filled <= quantity and remaining == quantity - filled.
func (o *Order) CheckInvariant() error {
	if o.FilledQuantity.IsNegative() || o.FilledQuantity.GreaterThan(o.Quantity) {
		return &InvariantError{Entity: "order", ID: o.ID, Detail: "filled quantity out of range"}
	}
	if !o.RemainingQuantity.Equal(o.Quantity.Sub(o.FilledQuantity)) {
		return &InvariantError{Entity: "order", ID: o.ID, Detail: "remaining != quantity - filled"}
	}
	if o.ReservedAmount.IsNegative() {
		return &InvariantError{Entity: "order", ID: o.ID, Detail: "negative reserved amount"}
	}
	return nil
}

// TransitionTo moves the order to status, rejecting illegal edges.
func (o *Order) TransitionTo(status OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, status) {
		return ErrInvalidStateTransition
	}
	o.Status = status
	o.UpdatedAt = now
	switch status {
	case OrderStatusCancelled:
		o.CancelledAt = &now
	case OrderStatusExpired:
		o.ExpiredAt = &now
	}
	return nil
}

// ReleaseShare is the part of ReservedAmount attributable to qty of the
// remaining quantity. The final fill takes everything left so rounding never
// strands an encumbrance.
func (o *Order) ReleaseShare(qty decimal.Decimal) decimal.Decimal {
	if qty.GreaterThanOrEqual(o.RemainingQuantity) {
		return o.ReservedAmount
	}
	return o.ReservedAmount.Mul(qty).DivRound(o.RemainingQuantity, MaxScale)
}

// ApplyFill records an execution of qty at price with its commission. It
// updates quantities, weighted average price, totals, the reserved remainder
// and the status.
func (o *Order) ApplyFill(qty, price, commission, reservedShare decimal.Decimal, now time.Time) error {
	if !qty.IsPositive() {
		return NewValidationError("quantity", "must be positive")
	}
	if o.FilledQuantity.Add(qty).GreaterThan(o.Quantity) {
		return NewValidationError("quantity", "fill exceeds remaining order quantity")
	}

	next := OrderStatusPartiallyFilled
	if o.FilledQuantity.Add(qty).Equal(o.Quantity) {
		next = OrderStatusFilled
	}
	if !CanTransition(o.Status, next) {
		return ErrInvalidStateTransition
	}

	value := qty.Mul(price)
	newFilled := o.FilledQuantity.Add(qty)
	o.AverageExecutionPrice = o.TotalValue.Add(value).DivRound(newFilled, MaxScale)
	o.FilledQuantity = newFilled
	o.RemainingQuantity = o.Quantity.Sub(newFilled)
	o.TotalValue = o.TotalValue.Add(value)
	o.Commission = o.Commission.Add(commission)
	o.ReservedAmount = o.ReservedAmount.Sub(reservedShare)
	o.NetAmount = o.netAmount()
	o.Status = next
	o.UpdatedAt = now
	o.ExecutedAt = &now
	return o.CheckInvariant()
}

// netAmount is the cash effect on the client: paid for buys, received for sells.
func (o *Order) netAmount() decimal.Decimal {
	if o.Side == OrderSideBuy {
		return o.TotalValue.Add(o.Commission).Add(o.Fees)
	}
	return o.TotalValue.Sub(o.Commission).Sub(o.Fees)
}

// State is the audit snapshot of an order.
func (o *Order) State() JSON {
	return JSON{
		"status":             string(o.Status),
		"filled_quantity":    o.FilledQuantity.String(),
		"remaining_quantity": o.RemainingQuantity.String(),
		"reserved_amount":    o.ReservedAmount.String(),
		"average_price":      o.AverageExecutionPrice.String(),
		"version":            o.Version,
	}
}

// OrderFilter narrows ListOrders.
type OrderFilter struct {
	UserID  string
	Status  OrderStatus
	Side    OrderSide
	AssetID string
	Limit   int
	Offset  int
}
