package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/postgres/generated"
	"github.com/iho/vamledger/internal/usecase"
)

// AuctionRepository implements usecase.AuctionRepository.
type AuctionRepository struct {
	queries *generated.Queries
}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return newAuctionRepository(pool)
}

func newAuctionRepository(db generated.DBTX) *AuctionRepository {
	return &AuctionRepository{queries: generated.New(db)}
}

// Create inserts a new auction.
func (r *AuctionRepository) Create(ctx context.Context, tx usecase.Transaction, auction *domain.Auction) error {
	return queriesFor(r.queries, tx).CreateAuction(ctx, generated.CreateAuctionParams{
		ID:               auction.ID,
		AssetName:        auction.AssetName,
		AssetDescription: auction.AssetDescription,
		AssetType:        string(auction.AssetType),
		TokenType:        string(auction.TokenType),
		ReservePrice:     decimalToNumeric(auction.ReservePrice),
		StartTime:        timeToPgTimestamptz(auction.StartTime),
		EndTime:          timeToPgTimestamptz(auction.EndTime),
		Status:           string(auction.Status),
		CreatedAt:        timeToPgTimestamptz(auction.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(auction.UpdatedAt),
	})
}

// GetByID retrieves an auction by ID.
func (r *AuctionRepository) GetByID(ctx context.Context, id string) (*domain.Auction, error) {
	row, err := r.queries.GetAuctionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}

	return rowToAuction(row), nil
}

// GetByIDForUpdate retrieves an auction by ID with a FOR UPDATE lock.
func (r *AuctionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Auction, error) {
	row, err := queriesFor(r.queries, tx).GetAuctionByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}

	return rowToAuction(row), nil
}

// List lists auctions ordered by end time, optionally filtered by status.
func (r *AuctionRepository) List(ctx context.Context, status *domain.AuctionStatus, limit, offset int) ([]*domain.Auction, error) {
	var filter string
	if status != nil {
		filter = string(*status)
	}

	rows, err := r.queries.ListAuctions(ctx, generated.ListAuctionsParams{
		Status:     filter,
		PageLimit:  int32(limit),
		PageOffset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAuctions(rows), nil
}

// ListEndedOpen lists open auctions whose end time is at or before now.
func (r *AuctionRepository) ListEndedOpen(ctx context.Context, now time.Time, limit int) ([]*domain.Auction, error) {
	rows, err := r.queries.ListEndedOpenAuctions(ctx, generated.ListEndedOpenAuctionsParams{
		EndTime: timeToPgTimestamptz(now),
		Limit:   int32(limit),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAuctions(rows), nil
}

// ListPendingRefunds lists settled auctions whose credits are not confirmed.
func (r *AuctionRepository) ListPendingRefunds(ctx context.Context, limit int) ([]*domain.Auction, error) {
	rows, err := r.queries.ListPendingRefundAuctions(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	return rowsToAuctions(rows), nil
}

// MarkSettled persists the settlement outcome if the auction is still open.
func (r *AuctionRepository) MarkSettled(ctx context.Context, tx usecase.Transaction, auction *domain.Auction) error {
	var settledAt pgtype.Timestamptz
	if auction.SettledAt != nil {
		settledAt = timeToPgTimestamptz(*auction.SettledAt)
	}

	n, err := queriesFor(r.queries, tx).MarkAuctionSettled(ctx, generated.MarkAuctionSettledParams{
		ID:              auction.ID,
		WinnerAccountID: stringPtrToText(auction.WinnerAccountID),
		WinningBid:      decimalPtrToNumeric(auction.WinningBid),
		ClearingPrice:   decimalPtrToNumeric(auction.ClearingPrice),
		CapturedDelta:   decimalPtrToNumeric(auction.CapturedDelta),
		SettledAt:       settledAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadySettled
	}

	return nil
}

// MarkCancelled cancels the auction if it is still open.
func (r *AuctionRepository) MarkCancelled(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	n, err := queriesFor(r.queries, tx).MarkAuctionCancelled(ctx, generated.MarkAuctionCancelledParams{
		ID:        id,
		UpdatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadySettled
	}

	return nil
}

// MarkRefundsCompleted stamps the completion time once. marked is false when
// an earlier call already stamped it.
func (r *AuctionRepository) MarkRefundsCompleted(ctx context.Context, tx usecase.Transaction, id string, at time.Time) (bool, error) {
	n, err := queriesFor(r.queries, tx).MarkAuctionRefundsCompleted(ctx, generated.MarkAuctionRefundsCompletedParams{
		ID:                 id,
		RefundsCompletedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func rowsToAuctions(rows []generated.Auction) []*domain.Auction {
	auctions := make([]*domain.Auction, 0, len(rows))
	for _, row := range rows {
		auctions = append(auctions, rowToAuction(row))
	}
	return auctions
}

func rowToAuction(row generated.Auction) *domain.Auction {
	return &domain.Auction{
		ID:                 row.ID,
		AssetName:          row.AssetName,
		AssetDescription:   row.AssetDescription,
		AssetType:          domain.AssetType(row.AssetType),
		TokenType:          domain.TokenType(row.TokenType),
		ReservePrice:       numericToDecimal(row.ReservePrice),
		StartTime:          row.StartTime.Time,
		EndTime:            row.EndTime.Time,
		Status:             domain.AuctionStatus(row.Status),
		WinnerAccountID:    textToStringPtr(row.WinnerAccountID),
		WinningBid:         numericToDecimalPtr(row.WinningBid),
		ClearingPrice:      numericToDecimalPtr(row.ClearingPrice),
		CapturedDelta:      numericToDecimalPtr(row.CapturedDelta),
		SettledAt:          pgTimestamptzToPtr(row.SettledAt),
		RefundsCompletedAt: pgTimestamptzToPtr(row.RefundsCompletedAt),
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}
