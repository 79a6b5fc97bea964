package domain

import "github.com/shopspring/decimal"

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// OrderSpec is the closed set of order variants. Each variant carries only the
// prices its type needs; the unexported marker keeps other packages from
// adding variants.
type OrderSpec interface {
	Type() OrderType
	sealed()
}

type MarketSpec struct{}

type LimitSpec struct {
	LimitPrice decimal.Decimal
}

type StopSpec struct {
	StopPrice decimal.Decimal
}

type StopLimitSpec struct {
	LimitPrice decimal.Decimal
	StopPrice  decimal.Decimal
}

func (MarketSpec) Type() OrderType    { return OrderTypeMarket }
func (LimitSpec) Type() OrderType     { return OrderTypeLimit }
func (StopSpec) Type() OrderType      { return OrderTypeStop }
func (StopLimitSpec) Type() OrderType { return OrderTypeStopLimit }

func (MarketSpec) sealed()    {}
func (LimitSpec) sealed()     {}
func (StopSpec) sealed()      {}
func (StopLimitSpec) sealed() {}

// NewOrderSpec builds a variant from wire fields. Prices are required exactly
// where the type uses them and must be positive with at most 8 decimals.
func NewOrderSpec(orderType OrderType, limitPrice, stopPrice *decimal.Decimal) (OrderSpec, error) {
	verr := &ValidationError{}
	needLimit := orderType == OrderTypeLimit || orderType == OrderTypeStopLimit
	needStop := orderType == OrderTypeStop || orderType == OrderTypeStopLimit

	switch orderType {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
	default:
		verr.Add("type", "must be one of market, limit, stop, stop_limit")
		return nil, verr
	}

	checkPrice := func(field string, p *decimal.Decimal, required bool) {
		switch {
		case p == nil && required:
			verr.Add(field, "is required for "+string(orderType)+" orders")
		case p != nil && !required:
			verr.Add(field, "is not allowed for "+string(orderType)+" orders")
		case p != nil:
			if msg := checkPositiveScaled(*p); msg != "" {
				verr.Add(field, msg)
			}
		}
	}
	checkPrice("limit_price", limitPrice, needLimit)
	checkPrice("stop_price", stopPrice, needStop)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	switch orderType {
	case OrderTypeLimit:
		return LimitSpec{LimitPrice: *limitPrice}, nil
	case OrderTypeStop:
		return StopSpec{StopPrice: *stopPrice}, nil
	case OrderTypeStopLimit:
		return StopLimitSpec{LimitPrice: *limitPrice, StopPrice: *stopPrice}, nil
	default:
		return MarketSpec{}, nil
	}
}

// SpecPrices flattens a variant for storage and transport.
func SpecPrices(spec OrderSpec) (limitPrice, stopPrice *decimal.Decimal) {
	switch s := spec.(type) {
	case LimitSpec:
		return &s.LimitPrice, nil
	case StopSpec:
		return nil, &s.StopPrice
	case StopLimitSpec:
		return &s.LimitPrice, &s.StopPrice
	}
	return nil, nil
}

// PriceBasis is the per-unit price used to size a buy reservation. Market
// orders have no price of their own and use the reference price plus buffer.
func PriceBasis(spec OrderSpec, referencePrice, marketBuffer decimal.Decimal) decimal.Decimal {
	switch s := spec.(type) {
	case LimitSpec:
		return s.LimitPrice
	case StopLimitSpec:
		return s.LimitPrice
	case StopSpec:
		return s.StopPrice
	}
	return referencePrice.Mul(decimal.NewFromInt(1).Add(marketBuffer))
}

// NeedsReferencePrice reports whether sizing a buy needs a market price.
func NeedsReferencePrice(spec OrderSpec) bool {
	_, ok := spec.(MarketSpec)
	return ok
}
