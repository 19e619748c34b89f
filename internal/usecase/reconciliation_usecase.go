package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase completes settlement credits that were interrupted
// after an auction was marked settled.
type ReconciliationUseCase struct {
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	credits     *creditIssuer
	clock       Clock
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(deps SettlementDeps) *ReconciliationUseCase {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}

	return &ReconciliationUseCase{
		auctionRepo: deps.AuctionRepo,
		bidRepo:     deps.BidRepo,
		credits:     deps.creditIssuer(),
		clock:       deps.Clock,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// ReconciliationResult is the repair outcome for one settled auction.
type ReconciliationResult struct {
	AuctionID      string
	CreditsApplied int
	CreditsSkipped int
	CreditsFailed  int
	Completed      bool
}

// ReconciliationReport summarizes one reconciliation pass.
type ReconciliationReport struct {
	AuctionsScanned   int
	AuctionsCompleted int
	CreditsApplied    int
	CreditsFailed     int
	Results           []*ReconciliationResult
	CheckedAt         time.Time
}

// Run scans settled auctions whose credits were never confirmed complete and
// applies whatever is missing. Credits already applied are skipped.
func (uc *ReconciliationUseCase) Run(ctx context.Context) (*ReconciliationReport, error) {
	auctions, err := uc.auctionRepo.ListPendingRefunds(ctx, ReconciliationBatchSize)
	if err != nil {
		uc.observeRun("error")
		return nil, fmt.Errorf("list pending refunds: %w", err)
	}

	report := &ReconciliationReport{
		Results:   make([]*ReconciliationResult, 0, len(auctions)),
		CheckedAt: uc.clock.Now(),
	}

	for _, auction := range auctions {
		if ctx.Err() != nil {
			uc.observeRun("cancelled")
			return report, ctx.Err()
		}

		result, err := uc.reconcile(ctx, auction)
		if err != nil {
			uc.logger.Error().Err(err).Str("auction_id", auction.ID).Msg("reconciliation failed")
			result = &ReconciliationResult{AuctionID: auction.ID, CreditsFailed: 1}
		}

		report.AuctionsScanned++
		report.CreditsApplied += result.CreditsApplied
		report.CreditsFailed += result.CreditsFailed
		if result.Completed {
			report.AuctionsCompleted++
		}
		report.Results = append(report.Results, result)
	}

	if report.CreditsApplied > 0 {
		uc.logger.Warn().
			Int("auctions_scanned", report.AuctionsScanned).
			Int("credits_applied", report.CreditsApplied).
			Msg("reconciliation applied missing settlement credits")
	}

	status := "ok"
	if report.CreditsFailed > 0 {
		status = "incomplete"
	}
	uc.observeRun(status)

	return report, nil
}

// ReconcileAuction repairs a single auction.
func (uc *ReconciliationUseCase) ReconcileAuction(ctx context.Context, auctionID string) (*ReconciliationResult, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if auction.Status != domain.AuctionStatusSettled || auction.RefundsCompletedAt != nil {
		return &ReconciliationResult{AuctionID: auction.ID, Completed: true}, nil
	}

	return uc.reconcile(ctx, auction)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, auction *domain.Auction) (*ReconciliationResult, error) {
	bids, err := uc.bidRepo.ListByAuction(ctx, nil, auction.ID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}

	report := uc.credits.issue(ctx, auction, bids)

	if uc.metrics != nil && report.Applied > 0 {
		uc.metrics.ReconciliationRepairs.Add(float64(report.Applied))
	}

	return &ReconciliationResult{
		AuctionID:      auction.ID,
		CreditsApplied: report.Applied,
		CreditsSkipped: report.Skipped,
		CreditsFailed:  report.Failed,
		Completed:      report.Completed,
	}, nil
}

func (uc *ReconciliationUseCase) observeRun(status string) {
	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.WithLabelValues(status).Inc()
	}
}
