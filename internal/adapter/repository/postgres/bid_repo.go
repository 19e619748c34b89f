package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/postgres/generated"
	"github.com/iho/vamledger/internal/usecase"
)

// BidRepository implements usecase.BidRepository.
type BidRepository struct {
	queries *generated.Queries
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return newBidRepository(pool)
}

func newBidRepository(db generated.DBTX) *BidRepository {
	return &BidRepository{queries: generated.New(db)}
}

// Create inserts the bid while holding a share lock on an open auction row.
// No row is inserted once the auction is settled or past its end time.
func (r *BidRepository) Create(ctx context.Context, tx usecase.Transaction, bid *domain.Bid) error {
	id, err := queriesFor(r.queries, tx).CreateBid(ctx, generated.CreateBidParams{
		AuctionID:   bid.AuctionID,
		AccountID:   bid.AccountID,
		Amount:      decimalToNumeric(bid.Amount),
		SubmittedAt: timeToPgTimestamptz(bid.SubmittedAt),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAuctionNotOpen
		}
		if pgErrorCode(err) == pgErrUniqueViolation {
			return domain.ErrDuplicateBid
		}
		return err
	}

	bid.ID = id
	return nil
}

// GetByAuctionAndAccount retrieves a member's bid on an auction.
func (r *BidRepository) GetByAuctionAndAccount(ctx context.Context, auctionID, accountID string) (*domain.Bid, error) {
	row, err := r.queries.GetBidByAuctionAndAccount(ctx, generated.GetBidByAuctionAndAccountParams{
		AuctionID: auctionID,
		AccountID: accountID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}

	return rowToBid(row), nil
}

// ListByAuction lists every bid on an auction in insertion order.
func (r *BidRepository) ListByAuction(ctx context.Context, tx usecase.Transaction, auctionID string) ([]*domain.Bid, error) {
	rows, err := queriesFor(r.queries, tx).ListBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	return rowsToBids(rows), nil
}

// ListByAccount lists a member's bids, newest first.
func (r *BidRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error) {
	rows, err := r.queries.ListBidsByAccount(ctx, generated.ListBidsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToBids(rows), nil
}

// CountByAuction counts the bids on an auction.
func (r *BidRepository) CountByAuction(ctx context.Context, auctionID string) (int, error) {
	n, err := r.queries.CountBidsByAuction(ctx, auctionID)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// MarkWinning flags the winning bid.
func (r *BidRepository) MarkWinning(ctx context.Context, tx usecase.Transaction, bidID int64) error {
	return queriesFor(r.queries, tx).MarkBidWinning(ctx, bidID)
}

// MarkRefunded records that the bid's settlement credit was applied.
func (r *BidRepository) MarkRefunded(ctx context.Context, tx usecase.Transaction, bidID int64, at time.Time) error {
	return queriesFor(r.queries, tx).MarkBidRefunded(ctx, generated.MarkBidRefundedParams{
		ID:         bidID,
		RefundedAt: timeToPgTimestamptz(at),
	})
}

func rowsToBids(rows []generated.Bid) []*domain.Bid {
	bids := make([]*domain.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, rowToBid(row))
	}
	return bids
}

func rowToBid(row generated.Bid) *domain.Bid {
	return &domain.Bid{
		ID:          row.ID,
		AuctionID:   row.AuctionID,
		AccountID:   row.AccountID,
		Amount:      numericToDecimal(row.Amount),
		SubmittedAt: row.SubmittedAt.Time,
		IsWinning:   row.IsWinning,
		RefundedAt:  pgTimestamptzToPtr(row.RefundedAt),
	}
}
