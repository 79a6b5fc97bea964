package domain

import "time"

// Event types
const (
	EventTypeOrderPlaced       = "order.placed"
	EventTypeOrderAcknowledged = "order.acknowledged"
	EventTypeOrderFilled       = "order.filled"
	EventTypeOrderCancelled    = "order.cancelled"
	EventTypeOrderRejected     = "order.rejected"
	EventTypeOrderExpired      = "order.expired"
	EventTypeWalletDeposited   = "wallet.deposited"
	EventTypeKycStatusChanged  = "kyc.status_changed"
)

// Aggregate types
const (
	AggregateTypeOrder  = "order"
	AggregateTypeWallet = "wallet"
	AggregateTypeUser   = "user"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// OrderEvent is the payload of every order lifecycle event.
type OrderEvent struct {
	OrderID           string `json:"order_id"`
	UserID            string `json:"user_id"`
	AssetID           string `json:"asset_id"`
	Side              string `json:"side"`
	Type              string `json:"type"`
	Status            string `json:"status"`
	Quantity          string `json:"quantity"`
	FilledQuantity    string `json:"filled_quantity"`
	RemainingQuantity string `json:"remaining_quantity"`
	AveragePrice      string `json:"average_price"`
	Reason            string `json:"reason,omitempty"`
	EventAt           string `json:"event_at"`
}

// NewOrderEvent builds the event payload for o.
func NewOrderEvent(o *Order, now time.Time) map[string]any {
	return MarshalState(OrderEvent{
		OrderID:           o.ID,
		UserID:            o.UserID,
		AssetID:           o.AssetID,
		Side:              string(o.Side),
		Type:              string(o.Type()),
		Status:            string(o.Status),
		Quantity:          o.Quantity.String(),
		FilledQuantity:    o.FilledQuantity.String(),
		RemainingQuantity: o.RemainingQuantity.String(),
		AveragePrice:      o.AverageExecutionPrice.String(),
		Reason:            o.RejectReason,
		EventAt:           now.UTC().Format(time.RFC3339Nano),
	})
}

// WalletDepositedEvent payload
type WalletDepositedEvent struct {
	WalletID string `json:"wallet_id"`
	UserID   string `json:"user_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}
