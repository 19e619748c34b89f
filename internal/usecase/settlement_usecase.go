package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/metrics"
)

// SettlementUseCase settles sealed-bid second-price auctions.
type SettlementUseCase struct {
	txManager   TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	clock       Clock
	credits     *creditIssuer
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// SettlementDeps groups the collaborators shared by settlement and reconciliation.
type SettlementDeps struct {
	TxManager   TransactionManager
	AuctionRepo AuctionRepository
	BidRepo     BidRepository
	BalanceRepo BalanceRepository
	OutboxRepo  OutboxRepository
	IDGen       IDGenerator
	Retrier     Retrier
	Clock       Clock
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

func (d SettlementDeps) creditIssuer() *creditIssuer {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	return &creditIssuer{
		txManager:   d.TxManager,
		auctionRepo: d.AuctionRepo,
		bidRepo:     d.BidRepo,
		balanceRepo: d.BalanceRepo,
		outboxRepo:  d.OutboxRepo,
		idGen:       d.IDGen,
		retrier:     d.Retrier,
		clock:       d.Clock,
		metrics:     d.Metrics,
		logger:      d.Logger,
	}
}

func NewSettlementUseCase(deps SettlementDeps) *SettlementUseCase {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}

	return &SettlementUseCase{
		txManager:   deps.TxManager,
		auctionRepo: deps.AuctionRepo,
		bidRepo:     deps.BidRepo,
		outboxRepo:  deps.OutboxRepo,
		idGen:       deps.IDGen,
		retrier:     deps.Retrier,
		clock:       deps.Clock,
		credits:     deps.creditIssuer(),
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// SettlementResult is the outcome returned to the caller.
type SettlementResult struct {
	AuctionID       string
	Status          domain.AuctionStatus
	WinnerAccountID string
	WinningBid      decimal.Decimal
	ClearingPrice   decimal.Decimal
	CapturedDelta   decimal.Decimal
	BidCount        int
	CreditsApplied  int
	RefundsPending  bool
}

// SettleAuction transitions an open auction to its terminal state exactly
// once and then refunds losing bids and rebates the winner. A second call,
// concurrent or not, fails with domain.ErrAlreadySettled and moves no funds.
//
// When some credits cannot be applied the committed outcome is still
// returned, with RefundsPending set; reconciliation completes them.
func (uc *SettlementUseCase) SettleAuction(ctx context.Context, auctionID string) (*SettlementResult, error) {
	start := time.Now()

	var (
		auction *domain.Auction
		bids    []*domain.Bid
	)

	err := retry(ctx, uc.retrier, func() error {
		var err error
		auction, bids, err = uc.transition(ctx, auctionID)
		return err
	})
	if err != nil {
		uc.observe("rejected", start)
		if errors.Is(err, domain.ErrAlreadySettled) {
			uc.logger.Debug().Str("auction_id", auctionID).Msg("settlement rejected, auction not open")
		}
		return nil, err
	}

	result := &SettlementResult{
		AuctionID: auction.ID,
		Status:    auction.Status,
		BidCount:  len(bids),
	}

	if auction.Status == domain.AuctionStatusCancelled {
		uc.logger.Info().Str("auction_id", auction.ID).Msg("auction closed without bids, cancelled")
		uc.observe("cancelled", start)
		return result, nil
	}

	result.WinnerAccountID = *auction.WinnerAccountID
	result.WinningBid = *auction.WinningBid
	result.ClearingPrice = *auction.ClearingPrice
	result.CapturedDelta = *auction.CapturedDelta

	report := uc.credits.issue(ctx, auction, bids)
	result.CreditsApplied = report.Applied
	result.RefundsPending = !report.Completed

	event := uc.logger.Info()
	if result.RefundsPending {
		event = uc.logger.Warn().Int("credits_failed", report.Failed)
	}
	event.
		Str("auction_id", auction.ID).
		Str("winner_account_id", result.WinnerAccountID).
		Str("clearing_price", result.ClearingPrice.String()).
		Str("captured_delta", result.CapturedDelta.String()).
		Int("credits_applied", report.Applied).
		Bool("refunds_pending", result.RefundsPending).
		Msg("auction settled")

	uc.observe("settled", start)
	return result, nil
}

// transition locks the auction, ranks its bids and commits the terminal
// state. The row lock keeps new bids out while the bid set is read.
func (uc *SettlementUseCase) transition(ctx context.Context, auctionID string) (*domain.Auction, []*domain.Bid, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	auction, err := uc.auctionRepo.GetByIDForUpdate(txCtx, tx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	if auction.Status != domain.AuctionStatusOpen {
		return nil, nil, domain.ErrAlreadySettled
	}

	bids, err := uc.bidRepo.ListByAuction(txCtx, tx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("list bids: %w", err)
	}

	now := uc.clock.Now()

	if len(bids) == 0 {
		if err := auction.Cancel(now); err != nil {
			return nil, nil, err
		}
		if err := uc.auctionRepo.MarkCancelled(txCtx, tx, auctionID, now); err != nil {
			return nil, nil, err
		}
		if err := uc.outboxRepo.Create(txCtx, tx, uc.cancelledEvent(auction, now)); err != nil {
			return nil, nil, fmt.Errorf("create outbox event: %w", err)
		}
		if err := tx.Commit(txCtx); err != nil {
			return nil, nil, fmt.Errorf("commit cancellation: %w", err)
		}
		return auction, bids, nil
	}

	outcome, err := domain.ComputeOutcome(bids)
	if err != nil {
		return nil, nil, err
	}

	if err := auction.Settle(outcome, now); err != nil {
		return nil, nil, err
	}
	if err := uc.auctionRepo.MarkSettled(txCtx, tx, auction); err != nil {
		return nil, nil, err
	}
	if err := uc.bidRepo.MarkWinning(txCtx, tx, outcome.Winner.ID); err != nil {
		return nil, nil, fmt.Errorf("mark winning bid: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   auction.ID,
		AggregateType: domain.AggregateTypeAuction,
		EventType:     domain.EventTypeAuctionSettled,
		Payload: map[string]any{
			"auction_id":        auction.ID,
			"winner_account_id": outcome.Winner.AccountID,
			"winning_bid":       outcome.Winner.Amount.String(),
			"clearing_price":    outcome.ClearingPrice.String(),
			"captured_delta":    outcome.CapturedDelta.String(),
			"token_type":        string(auction.TokenType),
			"bid_count":         len(bids),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, fmt.Errorf("commit settlement: %w", err)
	}

	outcome.Winner.IsWinning = true
	return auction, bids, nil
}

func (uc *SettlementUseCase) cancelledEvent(auction *domain.Auction, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   auction.ID,
		AggregateType: domain.AggregateTypeAuction,
		EventType:     domain.EventTypeAuctionCancelled,
		Payload: map[string]any{
			"auction_id": auction.ID,
			"reason":     "no_bids",
		},
		CreatedAt: now,
	}
}

// SettleEnded settles every open auction whose end time has passed. It is
// the body of the scheduled settlement job.
func (uc *SettlementUseCase) SettleEnded(ctx context.Context) (int, error) {
	auctions, err := uc.auctionRepo.ListEndedOpen(ctx, uc.clock.Now(), SettlementBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list ended auctions: %w", err)
	}

	settled := 0
	for _, auction := range auctions {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}

		if _, err := uc.SettleAuction(ctx, auction.ID); err != nil {
			if errors.Is(err, domain.ErrAlreadySettled) {
				continue
			}
			uc.logger.Error().Err(err).Str("auction_id", auction.ID).Msg("scheduled settlement failed")
			continue
		}
		settled++
	}

	return settled, nil
}

func (uc *SettlementUseCase) observe(outcome string, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.Settlements.WithLabelValues(outcome).Inc()
	uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
}
