package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
	"github.com/iho/vamledger/internal/usecase/mocks"
)

// flakyBalances fails AdjustOnce for the listed operation keys.
type flakyBalances struct {
	*mocks.MockBalanceRepository
	mu   sync.Mutex
	fail map[string]bool
}

func (f *flakyBalances) AdjustOnce(ctx context.Context, tx usecase.Transaction, opKey, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, bool, error) {
	f.mu.Lock()
	failing := f.fail[opKey]
	f.mu.Unlock()
	if failing {
		return decimal.Zero, false, errors.New("ledger unavailable")
	}
	return f.MockBalanceRepository.AdjustOnce(ctx, tx, opKey, accountID, token, delta, at)
}

func (f *flakyBalances) heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = nil
}

func seedThreeBidders(t *testing.T, f *fixture) {
	t.Helper()
	f.openAuction(t, "a1", 100)
	for _, id := range []string{"alice", "bob", "carol"} {
		f.balances.Seed(id, domain.TokenCOMM, 1000)
	}
	f.placeBid(t, "a1", "alice", 500)
	f.placeBid(t, "a1", "bob", 300)
	f.placeBid(t, "a1", "carol", 150)
}

func TestSettlementUseCase_SecondPrice(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)
	f.assertBalance(t, "alice", 500)
	f.assertBalance(t, "bob", 700)
	f.assertBalance(t, "carol", 850)

	uc := usecase.NewSettlementUseCase(f.settlementDeps())
	res, err := uc.SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != domain.AuctionStatusSettled {
		t.Errorf("status = %s, want settled", res.Status)
	}
	if res.WinnerAccountID != "alice" {
		t.Errorf("winner = %s, want alice", res.WinnerAccountID)
	}
	if !res.WinningBid.Equal(decimal.NewFromInt(500)) {
		t.Errorf("winning bid = %s, want 500", res.WinningBid)
	}
	if !res.ClearingPrice.Equal(decimal.NewFromInt(300)) {
		t.Errorf("clearing price = %s, want 300", res.ClearingPrice)
	}
	if !res.CapturedDelta.Equal(decimal.NewFromInt(200)) {
		t.Errorf("captured delta = %s, want 200", res.CapturedDelta)
	}
	if res.BidCount != 3 || res.CreditsApplied != 3 || res.RefundsPending {
		t.Errorf("unexpected result %+v", res)
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)

	stored, _ := f.auctions.GetByID(context.Background(), "a1")
	if stored.Status != domain.AuctionStatusSettled || stored.RefundsCompletedAt == nil {
		t.Fatalf("expected settled auction with refunds completed, got %+v", stored)
	}

	bids, _ := f.bids.ListByAuction(context.Background(), nil, "a1")
	for _, b := range bids {
		if b.IsWinning != (b.AccountID == "alice") {
			t.Errorf("bid %d winning = %v", b.ID, b.IsWinning)
		}
		if b.RefundedAt == nil {
			t.Errorf("bid %d not marked refunded", b.ID)
		}
	}

	wantEvents := []string{
		domain.EventTypeBidPlaced,
		domain.EventTypeBidPlaced,
		domain.EventTypeBidPlaced,
		domain.EventTypeAuctionSettled,
		domain.EventTypeRefundsCompleted,
	}
	got := f.outbox.EventTypes()
	if len(got) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", got, wantEvents)
	}
	for i := range wantEvents {
		if got[i] != wantEvents[i] {
			t.Fatalf("events = %v, want %v", got, wantEvents)
		}
	}
}

func TestSettlementUseCase_SettleTwice(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)
	uc := usecase.NewSettlementUseCase(f.settlementDeps())

	if _, err := uc.SettleAuction(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.SettleAuction(context.Background(), "a1"); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)
}

func TestSettlementUseCase_ConcurrentSettlement(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)
	uc := usecase.NewSettlementUseCase(f.settlementDeps())

	const callers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.SettleAuction(context.Background(), "a1")
			if err == nil {
				mu.Lock()
				settled++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrAlreadySettled) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if settled != 1 {
		t.Fatalf("expected exactly 1 settlement, got %d", settled)
	}
	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)
}

func TestSettlementUseCase_SingleBidderPaysOwnBid(t *testing.T) {
	f := newFixture()
	f.openAuction(t, "a1", 100)
	f.balances.Seed("alice", domain.TokenCOMM, 1000)
	f.placeBid(t, "a1", "alice", 250)

	uc := usecase.NewSettlementUseCase(f.settlementDeps())
	res, err := uc.SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.ClearingPrice.Equal(decimal.NewFromInt(250)) {
		t.Errorf("clearing price = %s, want 250", res.ClearingPrice)
	}
	if !res.CapturedDelta.IsZero() {
		t.Errorf("captured delta = %s, want 0", res.CapturedDelta)
	}
	if res.CreditsApplied != 0 || res.RefundsPending {
		t.Errorf("unexpected result %+v", res)
	}
	f.assertBalance(t, "alice", 750)
}

func TestSettlementUseCase_TieGoesToEarliest(t *testing.T) {
	f := newFixture()
	f.openAuction(t, "a1", 0)
	f.balances.Seed("alice", domain.TokenCOMM, 1000)
	f.balances.Seed("bob", domain.TokenCOMM, 1000)

	f.placeBid(t, "a1", "alice", 300)
	f.clock.Advance(time.Second)
	f.placeBid(t, "a1", "bob", 300)

	uc := usecase.NewSettlementUseCase(f.settlementDeps())
	res, err := uc.SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.WinnerAccountID != "alice" {
		t.Errorf("winner = %s, want alice", res.WinnerAccountID)
	}
	if !res.CapturedDelta.IsZero() {
		t.Errorf("captured delta = %s, want 0", res.CapturedDelta)
	}
	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
}

func TestSettlementUseCase_NoBidsCancels(t *testing.T) {
	f := newFixture()
	f.openAuction(t, "a1", 100)

	uc := usecase.NewSettlementUseCase(f.settlementDeps())
	res, err := uc.SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != domain.AuctionStatusCancelled {
		t.Errorf("status = %s, want cancelled", res.Status)
	}
	if res.WinnerAccountID != "" || res.BidCount != 0 {
		t.Errorf("unexpected result %+v", res)
	}

	stored, _ := f.auctions.GetByID(context.Background(), "a1")
	if stored.Status != domain.AuctionStatusCancelled {
		t.Fatalf("stored status = %s, want cancelled", stored.Status)
	}

	events := f.outbox.EventTypes()
	if len(events) != 1 || events[0] != domain.EventTypeAuctionCancelled {
		t.Fatalf("events = %v", events)
	}

	if _, err := uc.SettleAuction(context.Background(), "a1"); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestSettlementUseCase_UnknownAuction(t *testing.T) {
	f := newFixture()
	uc := usecase.NewSettlementUseCase(f.settlementDeps())

	if _, err := uc.SettleAuction(context.Background(), "missing"); !errors.Is(err, domain.ErrAuctionNotFound) {
		t.Fatalf("expected ErrAuctionNotFound, got %v", err)
	}
}

func TestSettlementUseCase_RefundFailureLeavesPending(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)

	flaky := &flakyBalances{
		MockBalanceRepository: f.balances,
		fail:                  map[string]bool{"refund:3": true},
	}
	deps := f.settlementDeps()
	deps.BalanceRepo = flaky

	res, err := usecase.NewSettlementUseCase(deps).SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.RefundsPending {
		t.Fatal("expected refunds pending")
	}
	if res.CreditsApplied != 2 {
		t.Errorf("credits applied = %d, want 2", res.CreditsApplied)
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 850)

	stored, _ := f.auctions.GetByID(context.Background(), "a1")
	if stored.Status != domain.AuctionStatusSettled {
		t.Fatalf("status = %s, want settled", stored.Status)
	}
	if stored.RefundsCompletedAt != nil {
		t.Fatal("refunds must not be marked complete")
	}

	flaky.heal()

	report, err := usecase.NewReconciliationUseCase(deps).Run(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.AuctionsScanned != 1 || report.AuctionsCompleted != 1 || report.CreditsApplied != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)
}

func TestSettlementUseCase_SettleEnded(t *testing.T) {
	f := newFixture()
	f.openAuction(t, "a1", 0)
	late := &domain.Auction{
		ID:        "a2",
		AssetName: "Later parcel",
		AssetType: domain.AssetTypeLand,
		TokenType: domain.TokenCOMM,
		StartTime: testNow.Add(-time.Hour),
		EndTime:   testNow.Add(48 * time.Hour),
		Status:    domain.AuctionStatusOpen,
	}
	if err := f.auctions.Create(context.Background(), nil, late); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.balances.Seed("alice", domain.TokenCOMM, 100)
	f.placeBid(t, "a1", "alice", 60)

	f.clock.Advance(2 * time.Hour)

	uc := usecase.NewSettlementUseCase(f.settlementDeps())
	settled, err := uc.SettleEnded(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settled != 1 {
		t.Fatalf("settled = %d, want 1", settled)
	}

	a1, _ := f.auctions.GetByID(context.Background(), "a1")
	a2, _ := f.auctions.GetByID(context.Background(), "a2")
	if a1.Status != domain.AuctionStatusSettled {
		t.Errorf("a1 status = %s, want settled", a1.Status)
	}
	if a2.Status != domain.AuctionStatusOpen {
		t.Errorf("a2 status = %s, want open", a2.Status)
	}

	settled, err = uc.SettleEnded(context.Background())
	if err != nil || settled != 0 {
		t.Fatalf("second pass settled %d, err %v", settled, err)
	}
}
