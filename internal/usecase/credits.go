package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/metrics"
)

// creditIssuer applies the refunds and rebate owed by a settled auction. It
// is shared by settlement and reconciliation; every credit is keyed, so
// re-running it never pays a bid twice.
type creditIssuer struct {
	txManager   TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	balanceRepo BalanceRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	clock       Clock
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// creditReport summarizes one pass over an auction's credits.
type creditReport struct {
	Applied   int
	Skipped   int
	Failed    int
	Completed bool
}

func (c *creditIssuer) issue(ctx context.Context, auction *domain.Auction, bids []*domain.Bid) creditReport {
	var report creditReport

	for _, credit := range domain.SettlementCredits(auction, bids) {
		if bidRefunded(bids, credit.BidID) {
			report.Skipped++
			continue
		}

		applied, err := c.apply(ctx, credit)
		if err != nil {
			report.Failed++
			c.logger.Error().
				Err(err).
				Str("auction_id", auction.ID).
				Int64("bid_id", credit.BidID).
				Str("account_id", credit.AccountID).
				Str("kind", string(credit.Kind)).
				Str("amount", credit.Amount.String()).
				Msg("settlement credit failed")
			if c.metrics != nil {
				c.metrics.CreditFailures.WithLabelValues(string(credit.Kind)).Inc()
			}
			continue
		}

		if !applied {
			report.Skipped++
			continue
		}

		report.Applied++
		if c.metrics != nil {
			c.metrics.CreditsIssued.WithLabelValues(string(credit.Kind)).Inc()
		}
	}

	if report.Failed > 0 {
		return report
	}

	if err := c.complete(ctx, auction, report.Applied+report.Skipped); err != nil {
		c.logger.Error().Err(err).Str("auction_id", auction.ID).Msg("failed to mark refunds completed")
		report.Failed++
		return report
	}

	report.Completed = true
	return report
}

// apply credits one bidder and sets the bid's refund marker in the same
// transaction.
func (c *creditIssuer) apply(ctx context.Context, credit domain.Credit) (bool, error) {
	var applied bool

	err := retry(ctx, c.retrier, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := c.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		now := c.clock.Now()
		_, ok, err := c.balanceRepo.AdjustOnce(txCtx, tx, credit.Key, credit.AccountID, credit.TokenType, credit.Amount, now)
		if err != nil {
			return fmt.Errorf("credit %s: %w", credit.Key, err)
		}

		if err := c.bidRepo.MarkRefunded(txCtx, tx, credit.BidID, now); err != nil {
			return fmt.Errorf("mark bid %d refunded: %w", credit.BidID, err)
		}

		if err := tx.Commit(txCtx); err != nil {
			return err
		}

		applied = ok
		return nil
	})

	return applied, err
}

func (c *creditIssuer) complete(ctx context.Context, auction *domain.Auction, credits int) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := c.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := c.clock.Now()
	marked, err := c.auctionRepo.MarkRefundsCompleted(txCtx, tx, auction.ID, now)
	if err != nil {
		return err
	}
	if !marked {
		// A concurrent pass finished first and already wrote the event.
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            c.idGen.Generate(),
		AggregateID:   auction.ID,
		AggregateType: domain.AggregateTypeAuction,
		EventType:     domain.EventTypeRefundsCompleted,
		Payload: map[string]any{
			"auction_id": auction.ID,
			"credits":    credits,
		},
		CreatedAt: now,
	}
	if err := c.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	auction.RefundsCompletedAt = &now
	return nil
}

func bidRefunded(bids []*domain.Bid, id int64) bool {
	for _, b := range bids {
		if b.ID == id {
			return b.RefundedAt != nil
		}
	}
	return false
}
