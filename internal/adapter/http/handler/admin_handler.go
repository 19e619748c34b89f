package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/http/dto"
	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
)

type auctionAdmin interface {
	CreateAuction(ctx context.Context, input usecase.CreateAuctionInput) (*domain.Auction, error)
	CancelAuction(ctx context.Context, id string) (*domain.Auction, error)
}

type balanceAdmin interface {
	Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.Balance, error)
	GetBalances(ctx context.Context, accountID string) ([]*domain.Balance, error)
}

type reconciler interface {
	Run(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AdminHandler serves operator-only routes.
type AdminHandler struct {
	auctions   auctionAdmin
	ledger     balanceAdmin
	reconciler reconciler
	logger     zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(auctions auctionAdmin, ledger balanceAdmin, rec reconciler, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		auctions:   auctions,
		ledger:     ledger,
		reconciler: rec,
		logger:     log,
	}
}

// CreateAuction handles POST /admin/auctions.
func (h *AdminHandler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAuctionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	auction, err := h.auctions.CreateAuction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	zero := 0
	writeJSON(w, http.StatusCreated, dto.AuctionFromDomain(auction, &zero, nil))
}

// CancelAuction handles POST /admin/auctions/{auctionID}/cancel.
func (h *AdminHandler) CancelAuction(w http.ResponseWriter, r *http.Request) {
	auction, err := h.auctions.CancelAuction(r.Context(), chi.URLParam(r, "auctionID"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuctionFromDomain(auction, nil, nil))
}

// AdjustBalance handles POST /admin/balances/adjust.
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustBalanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	balance, err := h.ledger.Adjust(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// AccountBalances handles GET /accounts/{accountID}/balances.
func (h *AdminHandler) AccountBalances(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	balances, err := h.ledger.GetBalances(r.Context(), accountID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(accountID, balances))
}

// Reconcile handles POST /admin/reconcile.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.Run(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(report))
}
