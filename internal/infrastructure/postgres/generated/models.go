package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Asset struct {
	ID            string             `json:"id"`
	Symbol        string             `json:"symbol"`
	Name          string             `json:"name"`
	QuoteCurrency string             `json:"quote_currency"`
	Tradable      bool               `json:"tradable"`
	MinQuantity   pgtype.Numeric     `json:"min_quantity"`
	MaxQuantity   pgtype.Numeric     `json:"max_quantity"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type AuditEntry struct {
	ID           string             `json:"id"`
	EventType    string             `json:"event_type"`
	Category     string             `json:"category"`
	Severity     string             `json:"severity"`
	ActorID      string             `json:"actor_id"`
	ActorType    string             `json:"actor_type"`
	RequestID    string             `json:"request_id"`
	Description  string             `json:"description"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	Metadata     []byte             `json:"metadata"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Fill struct {
	ID          string             `json:"id"`
	OrderID     string             `json:"order_id"`
	ExecutionID string             `json:"execution_id"`
	Quantity    pgtype.Numeric     `json:"quantity"`
	Price       pgtype.Numeric     `json:"price"`
	Commission  pgtype.Numeric     `json:"commission"`
	ExecutedAt  pgtype.Timestamptz `json:"executed_at"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type Holding struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id"`
	AssetID              string             `json:"asset_id"`
	Quantity             pgtype.Numeric     `json:"quantity"`
	ReservedQuantity     pgtype.Numeric     `json:"reserved_quantity"`
	AveragePurchasePrice pgtype.Numeric     `json:"average_purchase_price"`
	TotalInvested        pgtype.Numeric     `json:"total_invested"`
	CurrentValue         pgtype.Numeric     `json:"current_value"`
	UnrealizedPnl        pgtype.Numeric     `json:"unrealized_pnl"`
	RealizedPnl          pgtype.Numeric     `json:"realized_pnl"`
	Version              int64              `json:"version"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

type KycRecord struct {
	UserID    string             `json:"user_id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Order struct {
	ID                    string             `json:"id"`
	UserID                string             `json:"user_id"`
	AssetID               string             `json:"asset_id"`
	Side                  string             `json:"side"`
	OrderType             string             `json:"order_type"`
	Status                string             `json:"status"`
	TimeInForce           string             `json:"time_in_force"`
	Quantity              pgtype.Numeric     `json:"quantity"`
	FilledQuantity        pgtype.Numeric     `json:"filled_quantity"`
	RemainingQuantity     pgtype.Numeric     `json:"remaining_quantity"`
	LimitPrice            pgtype.Numeric     `json:"limit_price"`
	StopPrice             pgtype.Numeric     `json:"stop_price"`
	AverageExecutionPrice pgtype.Numeric     `json:"average_execution_price"`
	ReservedAmount        pgtype.Numeric     `json:"reserved_amount"`
	WalletID              pgtype.Text        `json:"wallet_id"`
	TotalValue            pgtype.Numeric     `json:"total_value"`
	Commission            pgtype.Numeric     `json:"commission"`
	Fees                  pgtype.Numeric     `json:"fees"`
	NetAmount             pgtype.Numeric     `json:"net_amount"`
	RejectReason          string             `json:"reject_reason"`
	Version               int64              `json:"version"`
	PlacedAt              pgtype.Timestamptz `json:"placed_at"`
	ExecutedAt            pgtype.Timestamptz `json:"executed_at"`
	CancelledAt           pgtype.Timestamptz `json:"cancelled_at"`
	ExpiresAt             pgtype.Timestamptz `json:"expires_at"`
	ExpiredAt             pgtype.Timestamptz `json:"expired_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Wallet struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Currency          string             `json:"currency"`
	Available         pgtype.Numeric     `json:"available"`
	Reserved          pgtype.Numeric     `json:"reserved"`
	Total             pgtype.Numeric     `json:"total"`
	Version           int64              `json:"version"`
	LastTransactionAt pgtype.Timestamptz `json:"last_transaction_at"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}
