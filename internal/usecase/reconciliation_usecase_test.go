package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
	"github.com/iho/vamledger/internal/usecase/mockgen"
)

type stubAuctionRepository struct {
	usecase.AuctionRepository
	pendingFn func(ctx context.Context, limit int) ([]*domain.Auction, error)
}

func (s *stubAuctionRepository) ListPendingRefunds(ctx context.Context, limit int) ([]*domain.Auction, error) {
	return s.pendingFn(ctx, limit)
}

func TestReconciliationUseCase_ListError(t *testing.T) {
	deps := newFixture().settlementDeps()
	deps.AuctionRepo = &stubAuctionRepository{
		pendingFn: func(context.Context, int) ([]*domain.Auction, error) {
			return nil, errors.New("db down")
		},
	}

	_, err := usecase.NewReconciliationUseCase(deps).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestReconciliationUseCase_NothingPending(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)
	if _, err := usecase.NewSettlementUseCase(f.settlementDeps()).SettleAuction(context.Background(), "a1"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	report, err := usecase.NewReconciliationUseCase(f.settlementDeps()).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.AuctionsScanned != 0 || report.CreditsApplied != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !report.CheckedAt.Equal(testNow) {
		t.Errorf("checked_at = %v, want %v", report.CheckedAt, testNow)
	}
}

func TestReconciliationUseCase_CompletesInterruptedSettlement(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)

	flaky := &flakyBalances{
		MockBalanceRepository: f.balances,
		fail:                  map[string]bool{"rebate:1": true, "refund:2": true, "refund:3": true},
	}
	deps := f.settlementDeps()
	deps.BalanceRepo = flaky

	res, err := usecase.NewSettlementUseCase(deps).SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !res.RefundsPending || res.CreditsApplied != 0 {
		t.Fatalf("unexpected settlement %+v", res)
	}
	f.assertBalance(t, "alice", 500)
	f.assertBalance(t, "bob", 700)
	f.assertBalance(t, "carol", 850)

	flaky.heal()
	uc := usecase.NewReconciliationUseCase(deps)

	report, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.AuctionsCompleted != 1 || report.CreditsApplied != 3 {
		t.Fatalf("unexpected report %+v", report)
	}

	again, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if again.AuctionsScanned != 0 {
		t.Fatalf("expected nothing left to scan, got %+v", again)
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)
}

func TestReconciliationUseCase_CompletionMarkerLost(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)

	f.auctions.MarkRefundsCompletedFunc = func(context.Context, usecase.Transaction, string, time.Time) (bool, error) {
		return false, errors.New("connection reset")
	}
	res, err := usecase.NewSettlementUseCase(f.settlementDeps()).SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !res.RefundsPending {
		t.Fatal("expected refunds pending")
	}
	f.auctions.MarkRefundsCompletedFunc = nil

	result, err := usecase.NewReconciliationUseCase(f.settlementDeps()).ReconcileAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !result.Completed || result.CreditsApplied != 0 || result.CreditsSkipped != 3 {
		t.Fatalf("unexpected result %+v", result)
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)
}

func TestReconciliationUseCase_ReconcileOpenAuction(t *testing.T) {
	f := newFixture()
	f.openAuction(t, "a1", 0)

	result, err := usecase.NewReconciliationUseCase(f.settlementDeps()).ReconcileAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Completed || result.CreditsApplied != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, err := usecase.NewReconciliationUseCase(f.settlementDeps()).ReconcileAuction(context.Background(), "missing"); !errors.Is(err, domain.ErrAuctionNotFound) {
		t.Fatalf("expected ErrAuctionNotFound, got %v", err)
	}
}

func TestReconciliationUseCase_CreditsRunThroughRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture()
	seedThreeBidders(t, f)

	flaky := &flakyBalances{
		MockBalanceRepository: f.balances,
		fail:                  map[string]bool{"refund:2": true},
	}
	deps := f.settlementDeps()
	deps.BalanceRepo = flaky
	if _, err := usecase.NewSettlementUseCase(deps).SettleAuction(context.Background(), "a1"); err != nil {
		t.Fatalf("settle: %v", err)
	}
	flaky.heal()

	retrier := mockgen.NewMockRetrier(ctrl)
	retrier.EXPECT().
		Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, op func() error) error { return op() }).
		Times(1)
	deps.Retrier = retrier

	report, err := usecase.NewReconciliationUseCase(deps).Run(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.CreditsApplied != 1 {
		t.Fatalf("credits applied = %d, want 1", report.CreditsApplied)
	}
	f.assertBalance(t, "bob", 1000)
}

func TestReconciliationUseCase_CompletionAlreadyMarkedWritesNoEvent(t *testing.T) {
	f := newFixture()
	seedThreeBidders(t, f)

	// Another pass stamped the marker between our credits and our update.
	f.auctions.MarkRefundsCompletedFunc = func(context.Context, usecase.Transaction, string, time.Time) (bool, error) {
		return false, nil
	}

	res, err := usecase.NewSettlementUseCase(f.settlementDeps()).SettleAuction(context.Background(), "a1")
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if res.RefundsPending {
		t.Fatal("expected refunds to be reported complete")
	}

	for _, typ := range f.outbox.EventTypes() {
		if typ == domain.EventTypeRefundsCompleted {
			t.Fatalf("unexpected %s event", domain.EventTypeRefundsCompleted)
		}
	}

	f.assertBalance(t, "alice", 700)
	f.assertBalance(t, "bob", 1000)
	f.assertBalance(t, "carol", 1000)
}
