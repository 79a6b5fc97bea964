package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/orderledger/internal/adapter/http/dto"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

// OrderService defines the behavior needed by OrderHandler.
type OrderService interface {
	PlaceOrder(ctx context.Context, principal domain.Principal, in usecase.PlaceOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID, userID string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error)
	ListFills(ctx context.Context, orderID, userID string) ([]*domain.Fill, error)
	AcknowledgeOrder(ctx context.Context, orderID string) (*domain.Order, error)
	RejectOrder(ctx context.Context, orderID, reason string) (*domain.Order, error)
	ApplyFill(ctx context.Context, in usecase.FillInput) (*usecase.FillResult, error)
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orderUC OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderUC OrderService) *OrderHandler {
	return &OrderHandler{orderUC: orderUC}
}

// ownerScope is the user an order lookup is restricted to. Operators see all.
func ownerScope(p domain.Principal) string {
	if p.Role.CanOperate() {
		return ""
	}
	return p.UserID
}

// Place places a new order for the caller.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.PlaceOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid order", err)
		return
	}

	order, err := h.orderUC.PlaceOrder(r.Context(), p, input)
	if err != nil {
		writeDomainError(w, "order rejected", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OrderFromDomain(order))
}

// Get retrieves an order by ID.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), chi.URLParam(r, "id"), ownerScope(p))
	if err != nil {
		writeDomainError(w, "failed to get order", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// List lists the caller's orders. Operators may filter by user_id.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.OrderFilter{
		UserID:  ownerScope(p),
		Status:  domain.OrderStatus(q.Get("status")),
		Side:    domain.OrderSide(q.Get("side")),
		AssetID: q.Get("asset_id"),
		Limit:   parseIntQuery(r, "limit", 20),
		Offset:  parseIntQuery(r, "offset", 0),
	}
	if filter.UserID == "" {
		filter.UserID = q.Get("user_id")
	}
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	orders, err := h.orderUC.ListOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list orders", err)
		return
	}

	total, err := h.orderUC.CountOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to count orders", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListOrdersResponse{
		Orders: dto.OrdersFromDomain(orders),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Cancel cancels a live order.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	order, err := h.orderUC.CancelOrder(r.Context(), chi.URLParam(r, "id"), ownerScope(p))
	if err != nil {
		writeDomainError(w, "failed to cancel order", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// ListFills lists the executions applied to an order.
func (h *OrderHandler) ListFills(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	fills, err := h.orderUC.ListFills(r.Context(), chi.URLParam(r, "id"), ownerScope(p))
	if err != nil {
		writeDomainError(w, "failed to list fills", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fills": dto.FillsFromDomain(fills)})
}

// Acknowledge records the venue accepting an order.
func (h *OrderHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.AcknowledgeOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to acknowledge order", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// Reject records the venue refusing an order.
func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderUC.RejectOrder(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, "failed to reject order", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// ApplyFill applies an execution report. A redelivered report returns 200
// with duplicate set; a new one returns 201.
func (h *OrderHandler) ApplyFill(w http.ResponseWriter, r *http.Request) {
	var req dto.FillRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid fill", err)
		return
	}

	result, err := h.orderUC.ApplyFill(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to apply fill", err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.FillResultFromUseCase(result))
}
