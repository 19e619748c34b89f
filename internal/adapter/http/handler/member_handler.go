package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/http/dto"
	"github.com/iho/vamledger/internal/domain"
)

type balanceReader interface {
	GetBalance(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error)
	GetBalances(ctx context.Context, accountID string) ([]*domain.Balance, error)
}

type memberBidLister interface {
	ListMemberBids(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error)
}

// MemberHandler serves the caller's own balances and bids.
type MemberHandler struct {
	ledger balanceReader
	bids   memberBidLister
	logger zerolog.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ledger balanceReader, bids memberBidLister, log zerolog.Logger) *MemberHandler {
	return &MemberHandler{ledger: ledger, bids: bids, logger: log}
}

// Balances handles GET /me/balances.
func (h *MemberHandler) Balances(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	balances, err := h.ledger.GetBalances(r.Context(), accountID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(accountID, balances))
}

// Balance handles GET /me/balances/{token}.
func (h *MemberHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	token, err := domain.ParseTokenType(chi.URLParam(r, "token"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), accountID, token)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Bids handles GET /me/bids.
func (h *MemberHandler) Bids(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	bids, err := h.bids.ListMemberBids(r.Context(), accountID, parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BidListResponse{Bids: dto.BidsFromDomain(bids)})
}
