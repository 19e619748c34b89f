package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
)

type auctionServiceStub struct {
	listFn   func(ctx context.Context, input usecase.ListAuctionsInput) ([]*usecase.AuctionView, error)
	getFn    func(ctx context.Context, id string) (*usecase.AuctionView, error)
	bidsFn   func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error)
	createFn func(ctx context.Context, input usecase.CreateAuctionInput) (*domain.Auction, error)
	cancelFn func(ctx context.Context, id string) (*domain.Auction, error)
}

func (s *auctionServiceStub) ListAuctions(ctx context.Context, input usecase.ListAuctionsInput) ([]*usecase.AuctionView, error) {
	return s.listFn(ctx, input)
}

func (s *auctionServiceStub) GetAuction(ctx context.Context, id string) (*usecase.AuctionView, error) {
	return s.getFn(ctx, id)
}

func (s *auctionServiceStub) ListMemberBids(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error) {
	return s.bidsFn(ctx, accountID, limit, offset)
}

func (s *auctionServiceStub) CreateAuction(ctx context.Context, input usecase.CreateAuctionInput) (*domain.Auction, error) {
	return s.createFn(ctx, input)
}

func (s *auctionServiceStub) CancelAuction(ctx context.Context, id string) (*domain.Auction, error) {
	return s.cancelFn(ctx, id)
}

type bidServiceStub struct {
	placeFn func(ctx context.Context, input usecase.PlaceBidInput) (*usecase.PlaceBidResult, error)
}

func (s *bidServiceStub) PlaceBid(ctx context.Context, input usecase.PlaceBidInput) (*usecase.PlaceBidResult, error) {
	return s.placeFn(ctx, input)
}

type settlementServiceStub struct {
	settleFn func(ctx context.Context, auctionID string) (*usecase.SettlementResult, error)
}

func (s *settlementServiceStub) SettleAuction(ctx context.Context, auctionID string) (*usecase.SettlementResult, error) {
	return s.settleFn(ctx, auctionID)
}

type ledgerServiceStub struct {
	adjustFn      func(ctx context.Context, input usecase.AdjustInput) (*domain.Balance, error)
	getBalanceFn  func(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error)
	getBalancesFn func(ctx context.Context, accountID string) ([]*domain.Balance, error)
}

func (s *ledgerServiceStub) Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.Balance, error) {
	return s.adjustFn(ctx, input)
}

func (s *ledgerServiceStub) GetBalance(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error) {
	return s.getBalanceFn(ctx, accountID, token)
}

func (s *ledgerServiceStub) GetBalances(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	return s.getBalancesFn(ctx, accountID)
}

type reconcilerStub struct {
	runFn func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *reconcilerStub) Run(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.runFn(ctx)
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asMember(r *http.Request, accountID string) *http.Request {
	return r.WithContext(domain.ContextWithIdentity(r.Context(), domain.Identity{AccountID: accountID, Role: domain.RoleMember}))
}
