package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
	"github.com/iho/vamledger/internal/usecase/mocks"
)

type fixture struct {
	clock    *mocks.MockClock
	txMgr    *mocks.MockTransactionManager
	auctions *mocks.MockAuctionRepository
	bids     *mocks.MockBidRepository
	balances *mocks.MockBalanceRepository
	outbox   *mocks.MockOutboxRepository
	idGen    *mocks.MockIDGenerator
}

func newFixture() *fixture {
	return &fixture{
		clock:    mocks.NewMockClock(testNow),
		txMgr:    mocks.NewMockTransactionManager(),
		auctions: mocks.NewMockAuctionRepository(),
		bids:     mocks.NewMockBidRepository(),
		balances: mocks.NewMockBalanceRepository(),
		outbox:   mocks.NewMockOutboxRepository(),
		idGen:    mocks.NewMockIDGenerator(),
	}
}

func (f *fixture) bidUseCase() *usecase.BidUseCase {
	return usecase.NewBidUseCase(usecase.BidUseCaseDeps{
		TxManager:   f.txMgr,
		AuctionRepo: f.auctions,
		BidRepo:     f.bids,
		BalanceRepo: f.balances,
		OutboxRepo:  f.outbox,
		IDGen:       f.idGen,
		Clock:       f.clock,
		Logger:      zerolog.Nop(),
	})
}

func (f *fixture) settlementDeps() usecase.SettlementDeps {
	return usecase.SettlementDeps{
		TxManager:   f.txMgr,
		AuctionRepo: f.auctions,
		BidRepo:     f.bids,
		BalanceRepo: f.balances,
		OutboxRepo:  f.outbox,
		IDGen:       f.idGen,
		Clock:       f.clock,
		Logger:      zerolog.Nop(),
	}
}

// openAuction stores an open COMM auction running from an hour before
// testNow to an hour after.
func (f *fixture) openAuction(t *testing.T, id string, reserve int64) *domain.Auction {
	t.Helper()
	a := &domain.Auction{
		ID:           id,
		AssetName:    "Parcel " + id,
		AssetType:    domain.AssetTypeLand,
		TokenType:    domain.TokenCOMM,
		ReservePrice: decimal.NewFromInt(reserve),
		StartTime:    testNow.Add(-time.Hour),
		EndTime:      testNow.Add(time.Hour),
		Status:       domain.AuctionStatusOpen,
		CreatedAt:    testNow.Add(-time.Hour),
		UpdatedAt:    testNow.Add(-time.Hour),
	}
	if err := f.auctions.Create(context.Background(), nil, a); err != nil {
		t.Fatalf("seed auction: %v", err)
	}
	return a
}

func (f *fixture) placeBid(t *testing.T, auctionID, accountID string, amount int64) *domain.Bid {
	t.Helper()
	res, err := f.bidUseCase().PlaceBid(context.Background(), usecase.PlaceBidInput{
		AuctionID: auctionID,
		AccountID: accountID,
		Amount:    decimal.NewFromInt(amount),
	})
	if err != nil {
		t.Fatalf("place bid %s/%s: %v", auctionID, accountID, err)
	}
	return res.Bid
}

func (f *fixture) assertBalance(t *testing.T, accountID string, want int64) {
	t.Helper()
	if got := f.balances.Amount(accountID, domain.TokenCOMM); !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("balance of %s = %s, want %d", accountID, got, want)
	}
}
