package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/adapter/http/dto"
	"github.com/iho/orderledger/internal/domain"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error)
	Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.Wallet, error)
}

// HoldingService defines the behavior needed by WalletHandler for positions.
type HoldingService interface {
	ListHoldings(ctx context.Context, userID string) ([]*domain.Holding, error)
}

// WalletHandler serves balances and positions.
type WalletHandler struct {
	walletUC  WalletService
	holdingUC HoldingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService, holdingUC HoldingService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC, holdingUC: holdingUC}
}

// ListWallets lists the caller's wallets.
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	wallets, err := h.walletUC.ListWallets(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, "failed to list wallets", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"wallets": dto.WalletsFromDomain(wallets)})
}

// ListHoldings lists the caller's positions marked to the reference price.
func (h *WalletHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	holdings, err := h.holdingUC.ListHoldings(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, "failed to list holdings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"holdings": dto.HoldingsFromDomain(holdings)})
}

// Deposit credits a user's wallet, creating it on first funding.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := req.ParseAmount()
	if err != nil {
		writeDomainError(w, "invalid deposit", err)
		return
	}

	wallet, err := h.walletUC.Deposit(r.Context(), req.UserID, req.Currency, amount)
	if err != nil {
		writeDomainError(w, "failed to deposit", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}
