package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
)

// Repository methods that take a Transaction also accept nil, in which case
// the statement runs on its own.

// BalanceRepository defines data access for the balance ledger. Every
// mutation is a single conditional statement; callers never read-then-write.
type BalanceRepository interface {
	// Adjust applies delta and returns the new amount, or
	// domain.ErrInsufficientFunds if the result would be negative.
	Adjust(ctx context.Context, tx Transaction, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
	// AdjustOnce applies a non-negative delta at most once per opKey.
	// applied is false when opKey was already recorded.
	AdjustOnce(ctx context.Context, tx Transaction, opKey, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (amount decimal.Decimal, applied bool, err error)
	// Get returns a zero balance for pairs that were never credited.
	Get(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Balance, error)
}

// AuctionRepository defines data access for auctions.
type AuctionRepository interface {
	Create(ctx context.Context, tx Transaction, auction *domain.Auction) error
	GetByID(ctx context.Context, id string) (*domain.Auction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Auction, error)
	List(ctx context.Context, status *domain.AuctionStatus, limit, offset int) ([]*domain.Auction, error)
	ListEndedOpen(ctx context.Context, now time.Time, limit int) ([]*domain.Auction, error)
	ListPendingRefunds(ctx context.Context, limit int) ([]*domain.Auction, error)
	// MarkSettled and MarkCancelled only transition open auctions and
	// return domain.ErrAlreadySettled otherwise.
	MarkSettled(ctx context.Context, tx Transaction, auction *domain.Auction) error
	MarkCancelled(ctx context.Context, tx Transaction, id string, at time.Time) error
	// MarkRefundsCompleted reports false if the marker was already set.
	MarkRefundsCompleted(ctx context.Context, tx Transaction, id string, at time.Time) (bool, error)
}

// BidRepository defines data access for sealed bids.
type BidRepository interface {
	// Create inserts the bid only while its auction is open and before the
	// end time, assigning bid.ID. A second bid for the same
	// (auction, account) returns domain.ErrDuplicateBid.
	Create(ctx context.Context, tx Transaction, bid *domain.Bid) error
	GetByAuctionAndAccount(ctx context.Context, auctionID, accountID string) (*domain.Bid, error)
	ListByAuction(ctx context.Context, tx Transaction, auctionID string) ([]*domain.Bid, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error)
	CountByAuction(ctx context.Context, auctionID string) (int, error)
	MarkWinning(ctx context.Context, tx Transaction, bidID int64) error
	MarkRefunded(ctx context.Context, tx Transaction, bidID int64, at time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// SessionStore resolves externally issued member sessions.
type SessionStore interface {
	// Get returns domain.ErrUnauthorized for unknown or expired sessions.
	Get(ctx context.Context, sessionID string) (*domain.Identity, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete drops a key so a failed request can be retried.
	Delete(ctx context.Context, key string) error
}
