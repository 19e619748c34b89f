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

// BidUseCase accepts sealed bids.
type BidUseCase struct {
	txManager   TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	balanceRepo BalanceRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	clock       Clock
	maxAmount   decimal.Decimal
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// BidUseCaseDeps groups the collaborators of BidUseCase.
type BidUseCaseDeps struct {
	TxManager   TransactionManager
	AuctionRepo AuctionRepository
	BidRepo     BidRepository
	BalanceRepo BalanceRepository
	OutboxRepo  OutboxRepository
	IDGen       IDGenerator
	Retrier     Retrier
	Clock       Clock
	MaxAmount   decimal.Decimal
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

func NewBidUseCase(deps BidUseCaseDeps) *BidUseCase {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.MaxAmount.IsZero() {
		deps.MaxAmount = decimal.RequireFromString(domain.MaxBidAmount)
	}

	return &BidUseCase{
		txManager:   deps.TxManager,
		auctionRepo: deps.AuctionRepo,
		bidRepo:     deps.BidRepo,
		balanceRepo: deps.BalanceRepo,
		outboxRepo:  deps.OutboxRepo,
		idGen:       deps.IDGen,
		retrier:     deps.Retrier,
		clock:       deps.Clock,
		maxAmount:   deps.MaxAmount,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

type PlaceBidInput struct {
	AuctionID string
	AccountID string
	Amount    decimal.Decimal
}

type PlaceBidResult struct {
	Bid          *domain.Bid
	TokenType    domain.TokenType
	AmountLocked decimal.Decimal
	NewBalance   decimal.Decimal
}

// PlaceBid validates the bid, reserves its amount from the bidder's balance
// and persists it. Preconditions are checked in a fixed order and the first
// failure is returned. The reservation and the bid are written in one
// transaction, so a failed bid never holds funds.
func (uc *BidUseCase) PlaceBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error) {
	start := time.Now()

	result, err := uc.placeBid(ctx, input)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.BidsRejected.WithLabelValues(rejectionReason(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BidsPlaced.Inc()
		uc.metrics.BidAmount.Observe(result.AmountLocked.InexactFloat64())
		uc.metrics.BidAcceptDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

func (uc *BidUseCase) placeBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error) {
	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return nil, err
	}

	auction, err := uc.auctionRepo.GetByID(ctx, input.AuctionID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if err := auction.CheckBiddable(now); err != nil {
		return nil, err
	}

	if err := domain.ValidateAmount(input.Amount, uc.maxAmount); err != nil {
		return nil, err
	}
	if input.Amount.LessThan(auction.ReservePrice) {
		return nil, domain.ErrBidBelowReserve
	}

	balance, err := uc.balanceRepo.Get(ctx, input.AccountID, auction.TokenType)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if balance.Amount.LessThan(input.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	if _, err := uc.bidRepo.GetByAuctionAndAccount(ctx, input.AuctionID, input.AccountID); err == nil {
		return nil, domain.ErrDuplicateBid
	} else if !errors.Is(err, domain.ErrBidNotFound) {
		return nil, fmt.Errorf("check existing bid: %w", err)
	}

	bid := &domain.Bid{
		AuctionID:   input.AuctionID,
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		SubmittedAt: now,
	}

	// Deadlock and serialization victims were rolled back, so the whole
	// transaction is safe to run again.
	var newBalance decimal.Decimal
	err = retry(ctx, uc.retrier, func() error {
		var err error
		newBalance, err = uc.persistBid(ctx, bid, auction.TokenType)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PlaceBidResult{
		Bid:          bid,
		TokenType:    auction.TokenType,
		AmountLocked: input.Amount,
		NewBalance:   newBalance,
	}, nil
}

// persistBid debits the reservation, inserts the bid and its outbox event in
// one transaction. The checks in placeBid fix the error order; under
// concurrent requests the conditional debit and the unique insert here are
// authoritative.
func (uc *BidUseCase) persistBid(ctx context.Context, bid *domain.Bid, token domain.TokenType) (decimal.Decimal, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin transaction: %w", err)
	}

	reserved := false
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback(txCtx)
		if reserved {
			uc.logRollback(bid)
		}
	}()

	newBalance, err := uc.balanceRepo.Adjust(txCtx, tx, bid.AccountID, token, bid.Amount.Neg(), bid.SubmittedAt)
	if err != nil {
		return decimal.Zero, err
	}
	reserved = true

	if err := uc.bidRepo.Create(txCtx, tx, bid); err != nil {
		return decimal.Zero, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   fmt.Sprintf("%d", bid.ID),
		AggregateType: domain.AggregateTypeBid,
		EventType:     domain.EventTypeBidPlaced,
		Payload: map[string]any{
			"bid_id":     bid.ID,
			"auction_id": bid.AuctionID,
			"account_id": bid.AccountID,
		},
		CreatedAt: bid.SubmittedAt,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return decimal.Zero, fmt.Errorf("create outbox event: %w", err)
	}

	// A failed commit leaves the outcome unknown to us, but the debit and the
	// bid share its fate either way. No rollback is attempted after it.
	committed = true
	if err := tx.Commit(txCtx); err != nil {
		uc.logger.Error().
			Err(err).
			Str("auction_id", bid.AuctionID).
			Str("account_id", bid.AccountID).
			Msg("bid commit failed")
		return decimal.Zero, fmt.Errorf("commit bid: %w", err)
	}

	return newBalance, nil
}

func (uc *BidUseCase) logRollback(bid *domain.Bid) {
	uc.logger.Warn().
		Str("auction_id", bid.AuctionID).
		Str("account_id", bid.AccountID).
		Msg("bid not persisted, reservation rolled back")
	if uc.metrics != nil {
		uc.metrics.BidRollbacks.Inc()
	}
}

func retry(ctx context.Context, r Retrier, op func() error) error {
	if r == nil {
		return op()
	}
	return r.Retry(ctx, op)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return "auction_not_found"
	case errors.Is(err, domain.ErrAuctionNotOpen):
		return "auction_not_open"
	case errors.Is(err, domain.ErrAuctionEnded):
		return "auction_ended"
	case errors.Is(err, domain.ErrAuctionNotStarted):
		return "auction_not_started"
	case errors.Is(err, domain.ErrBidBelowReserve):
		return "below_reserve"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrDuplicateBid):
		return "duplicate_bid"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidAccountID):
		return "invalid_input"
	default:
		return "internal"
	}
}
