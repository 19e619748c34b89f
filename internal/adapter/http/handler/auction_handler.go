package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/http/dto"
	"github.com/iho/vamledger/internal/usecase"
)

type auctionReader interface {
	ListAuctions(ctx context.Context, input usecase.ListAuctionsInput) ([]*usecase.AuctionView, error)
	GetAuction(ctx context.Context, id string) (*usecase.AuctionView, error)
}

type bidPlacer interface {
	PlaceBid(ctx context.Context, input usecase.PlaceBidInput) (*usecase.PlaceBidResult, error)
}

type auctionSettler interface {
	SettleAuction(ctx context.Context, auctionID string) (*usecase.SettlementResult, error)
}

// AuctionHandler handles the public auction catalog, bidding and settlement.
type AuctionHandler struct {
	auctions   auctionReader
	bids       bidPlacer
	settlement auctionSettler
	logger     zerolog.Logger
}

// NewAuctionHandler creates a new AuctionHandler.
func NewAuctionHandler(auctions auctionReader, bids bidPlacer, settlement auctionSettler, log zerolog.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctions:   auctions,
		bids:       bids,
		settlement: settlement,
		logger:     log,
	}
}

// List handles GET /auctions.
func (h *AuctionHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.auctions.ListAuctions(r.Context(), usecase.ListAuctionsInput{
		Status: r.URL.Query().Get("status"),
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuctionListFromUseCase(views))
}

// Get handles GET /auctions/{auctionID}.
func (h *AuctionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.auctions.GetAuction(r.Context(), chi.URLParam(r, "auctionID"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuctionViewFromUseCase(view))
}

// PlaceBid handles POST /auctions/{auctionID}/bids.
func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	var req dto.PlaceBidRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.bids.PlaceBid(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "auctionID"), accountID))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBidFromUseCase(result))
}

// Settle handles POST /auctions/{auctionID}/settle.
func (h *AuctionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlement.SettleAuction(r.Context(), chi.URLParam(r, "auctionID"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromUseCase(result))
}
