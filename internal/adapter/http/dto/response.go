package dto

import (
	"time"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	AssetID               string     `json:"asset_id"`
	Side                  string     `json:"side"`
	Type                  string     `json:"type"`
	Status                string     `json:"status"`
	TimeInForce           string     `json:"time_in_force"`
	Quantity              string     `json:"quantity"`
	FilledQuantity        string     `json:"filled_quantity"`
	RemainingQuantity     string     `json:"remaining_quantity"`
	LimitPrice            *string    `json:"limit_price,omitempty"`
	StopPrice             *string    `json:"stop_price,omitempty"`
	AverageExecutionPrice string     `json:"average_execution_price"`
	ReservedAmount        string     `json:"reserved_amount"`
	TotalValue            string     `json:"total_value"`
	Commission            string     `json:"commission"`
	NetAmount             string     `json:"net_amount"`
	RejectReason          string     `json:"reject_reason,omitempty"`
	Version               int64      `json:"version"`
	PlacedAt              time.Time  `json:"placed_at"`
	ExecutedAt            *time.Time `json:"executed_at,omitempty"`
	CancelledAt           *time.Time `json:"cancelled_at,omitempty"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	ExpiredAt             *time.Time `json:"expired_at,omitempty"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// OrderFromDomain converts domain order to response.
func OrderFromDomain(o *domain.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:                    o.ID,
		UserID:                o.UserID,
		AssetID:               o.AssetID,
		Side:                  string(o.Side),
		Type:                  string(o.Type()),
		Status:                string(o.Status),
		TimeInForce:           string(o.TimeInForce),
		Quantity:              o.Quantity.String(),
		FilledQuantity:        o.FilledQuantity.String(),
		RemainingQuantity:     o.RemainingQuantity.String(),
		AverageExecutionPrice: o.AverageExecutionPrice.String(),
		ReservedAmount:        o.ReservedAmount.String(),
		TotalValue:            o.TotalValue.String(),
		Commission:            o.Commission.String(),
		NetAmount:             o.NetAmount.String(),
		RejectReason:          o.RejectReason,
		Version:               o.Version,
		PlacedAt:              o.PlacedAt,
		ExecutedAt:            o.ExecutedAt,
		CancelledAt:           o.CancelledAt,
		ExpiresAt:             o.ExpiresAt,
		ExpiredAt:             o.ExpiredAt,
		UpdatedAt:             o.UpdatedAt,
	}

	if o.Spec != nil {
		limit, stop := domain.SpecPrices(o.Spec)
		if limit != nil {
			s := limit.String()
			resp.LimitPrice = &s
		}
		if stop != nil {
			s := stop.String()
			resp.StopPrice = &s
		}
	}

	return resp
}

// OrdersFromDomain converts domain orders to responses.
func OrdersFromDomain(orders []*domain.Order) []*OrderResponse {
	result := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = OrderFromDomain(o)
	}
	return result
}

// ListOrdersResponse represents a page of orders. Total counts every
// matching order, not just this page.
type ListOrdersResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// FillResponse represents a fill in API responses.
type FillResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	ExecutionID string    `json:"execution_id"`
	Quantity    string    `json:"quantity"`
	Price       string    `json:"price"`
	Commission  string    `json:"commission"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// FillFromDomain converts domain fill to response.
func FillFromDomain(f *domain.Fill) *FillResponse {
	return &FillResponse{
		ID:          f.ID,
		OrderID:     f.OrderID,
		ExecutionID: f.ExecutionID,
		Quantity:    f.Quantity.String(),
		Price:       f.Price.String(),
		Commission:  f.Commission.String(),
		ExecutedAt:  f.ExecutedAt,
	}
}

// FillsFromDomain converts domain fills to responses.
func FillsFromDomain(fills []*domain.Fill) []*FillResponse {
	result := make([]*FillResponse, len(fills))
	for i, f := range fills {
		result[i] = FillFromDomain(f)
	}
	return result
}

// FillResultResponse is returned for an applied execution report.
type FillResultResponse struct {
	Order     *OrderResponse `json:"order"`
	Fill      *FillResponse  `json:"fill,omitempty"`
	Duplicate bool           `json:"duplicate"`
}

// FillResultFromUseCase converts a fill result to response.
func FillResultFromUseCase(r *usecase.FillResult) *FillResultResponse {
	resp := &FillResultResponse{
		Order:     OrderFromDomain(r.Order),
		Duplicate: r.Duplicate,
	}
	if r.Fill != nil {
		resp.Fill = FillFromDomain(r.Fill)
	}
	return resp
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Currency          string     `json:"currency"`
	Available         string     `json:"available"`
	Reserved          string     `json:"reserved"`
	Total             string     `json:"total"`
	Version           int64      `json:"version"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// WalletFromDomain converts domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:                w.ID,
		UserID:            w.UserID,
		Currency:          w.Currency,
		Available:         w.Available.String(),
		Reserved:          w.Reserved.String(),
		Total:             w.Total.String(),
		Version:           w.Version,
		LastTransactionAt: w.LastTransactionAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// HoldingResponse represents a position in API responses.
type HoldingResponse struct {
	ID                   string    `json:"id"`
	AssetID              string    `json:"asset_id"`
	Quantity             string    `json:"quantity"`
	ReservedQuantity     string    `json:"reserved_quantity"`
	AveragePurchasePrice string    `json:"average_purchase_price"`
	TotalInvested        string    `json:"total_invested"`
	CurrentValue         string    `json:"current_value"`
	UnrealizedPnl        string    `json:"unrealized_pnl"`
	RealizedPnl          string    `json:"realized_pnl"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// HoldingFromDomain converts domain holding to response.
func HoldingFromDomain(h *domain.Holding) *HoldingResponse {
	return &HoldingResponse{
		ID:                   h.ID,
		AssetID:              h.AssetID,
		Quantity:             h.Quantity.String(),
		ReservedQuantity:     h.ReservedQuantity.String(),
		AveragePurchasePrice: h.AveragePurchasePrice.String(),
		TotalInvested:        h.TotalInvested.String(),
		CurrentValue:         h.CurrentValue.String(),
		UnrealizedPnl:        h.UnrealizedPnl.String(),
		RealizedPnl:          h.RealizedPnl.String(),
		UpdatedAt:            h.UpdatedAt,
	}
}

// HoldingsFromDomain converts domain holdings to responses.
func HoldingsFromDomain(holdings []*domain.Holding) []*HoldingResponse {
	result := make([]*HoldingResponse, len(holdings))
	for i, h := range holdings {
		result[i] = HoldingFromDomain(h)
	}
	return result
}

// KycRecordResponse represents a stored verification status.
type KycRecordResponse struct {
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KycRecordFromDomain converts domain record to response.
func KycRecordFromDomain(k *domain.KycRecord) *KycRecordResponse {
	return &KycRecordResponse{
		UserID:    k.UserID,
		Status:    string(k.Status),
		UpdatedAt: k.UpdatedAt,
	}
}

// AuditEntryResponse represents an audit trail entry.
type AuditEntryResponse struct {
	ID           string               `json:"id"`
	ActorID      string               `json:"actor_id"`
	ActorType    string               `json:"actor_type"`
	EventType    string               `json:"event_type"`
	Category     string               `json:"category"`
	Severity     string               `json:"severity"`
	Description  string               `json:"description"`
	ResourceType string               `json:"resource_type"`
	ResourceID   string               `json:"resource_id"`
	Metadata     domain.AuditMetadata `json:"metadata"`
	RequestID    string               `json:"request_id,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// AuditEntriesFromDomain converts audit entries to responses.
func AuditEntriesFromDomain(entries []*domain.AuditEntry) []*AuditEntryResponse {
	result := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &AuditEntryResponse{
			ID:           e.ID,
			ActorID:      e.ActorID,
			ActorType:    string(e.ActorType),
			EventType:    string(e.EventType),
			Category:     string(e.Category),
			Severity:     string(e.Severity),
			Description:  e.Description,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Metadata:     e.Metadata,
			RequestID:    e.RequestID,
			CreatedAt:    e.CreatedAt,
		}
	}
	return result
}

// DriftResponse is one reservation mismatch.
type DriftResponse struct {
	ResourceID string `json:"resource_id"`
	Recorded   string `json:"recorded"`
	Expected   string `json:"expected"`
}

// ConsistencyResponse represents a ledger consistency check.
type ConsistencyResponse struct {
	Consistent   bool             `json:"consistent"`
	WalletDrift  []*DriftResponse `json:"wallet_drift"`
	HoldingDrift []*DriftResponse `json:"holding_drift"`
	CheckedAt    time.Time        `json:"checked_at"`
}

// ConsistencyFromReport converts a reconciliation report to response.
func ConsistencyFromReport(r *usecase.ReconciliationReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:   r.Consistent,
		WalletDrift:  driftsFromUseCase(r.WalletDrift),
		HoldingDrift: driftsFromUseCase(r.HoldingDrift),
		CheckedAt:    r.CheckedAt,
	}
}

func driftsFromUseCase(drift []usecase.ReservationDrift) []*DriftResponse {
	result := make([]*DriftResponse, len(drift))
	for i, d := range drift {
		result[i] = &DriftResponse{
			ResourceID: d.ResourceID,
			Recorded:   d.Recorded.String(),
			Expected:   d.Expected.String(),
		}
	}
	return result
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string              `json:"error"`
	Message   string              `json:"message,omitempty"`
	Fields    []domain.FieldError `json:"fields,omitempty"`
	NextOpen  *time.Time          `json:"next_open,omitempty"`
	KycStatus string              `json:"kyc_status,omitempty"`
	Retryable *bool               `json:"retryable,omitempty"`
}
