package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/postgres/generated"
	"github.com/iho/vamledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return newBalanceRepository(pool)
}

func newBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// Adjust applies delta in one statement. Credits upsert the row; debits
// update it only if the result stays non-negative.
func (r *BalanceRepository) Adjust(ctx context.Context, tx usecase.Transaction, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	q := queriesFor(r.queries, tx)

	if delta.IsNegative() {
		amount, err := q.DebitBalance(ctx, generated.DebitBalanceParams{
			AccountID: accountID,
			TokenType: string(token),
			Amount:    decimalToNumeric(delta.Neg()),
			UpdatedAt: timeToPgTimestamptz(at),
		})
		if err != nil {
			return decimal.Zero, mapBalanceError(err)
		}
		return numericToDecimal(amount), nil
	}

	amount, err := q.CreditBalance(ctx, generated.CreditBalanceParams{
		AccountID: accountID,
		TokenType: string(token),
		Amount:    decimalToNumeric(delta),
		UpdatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return decimal.Zero, mapBalanceError(err)
	}

	return numericToDecimal(amount), nil
}

// AdjustOnce records opKey and credits delta in the same statement. When the
// key already exists nothing is credited and the current amount is returned.
func (r *BalanceRepository) AdjustOnce(ctx context.Context, tx usecase.Transaction, opKey, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, bool, error) {
	if delta.IsNegative() {
		return decimal.Zero, false, domain.ErrInvalidDelta
	}

	q := queriesFor(r.queries, tx)

	amount, err := q.CreditBalanceOnce(ctx, generated.CreditBalanceOnceParams{
		OpKey:     opKey,
		AccountID: accountID,
		TokenType: string(token),
		Amount:    decimalToNumeric(delta),
		CreatedAt: timeToPgTimestamptz(at),
	})
	if err == nil {
		return numericToDecimal(amount), true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, mapBalanceError(err)
	}

	balance, err := getBalance(ctx, q, accountID, token)
	if err != nil {
		return decimal.Zero, false, err
	}

	return balance.Amount, false, nil
}

// Get retrieves one balance. Missing rows read as zero.
func (r *BalanceRepository) Get(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error) {
	return getBalance(ctx, r.queries, accountID, token)
}

// ListByAccount lists the stored balances of an account.
func (r *BalanceRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	rows, err := r.queries.ListBalancesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, rowToBalance(row))
	}

	return balances, nil
}

func getBalance(ctx context.Context, q *generated.Queries, accountID string, token domain.TokenType) (*domain.Balance, error) {
	row, err := q.GetBalance(ctx, generated.GetBalanceParams{
		AccountID: accountID,
		TokenType: string(token),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Balance{AccountID: accountID, TokenType: token, Amount: decimal.Zero}, nil
		}
		return nil, err
	}

	return rowToBalance(row), nil
}

func rowToBalance(row generated.Balance) *domain.Balance {
	return &domain.Balance{
		AccountID: row.AccountID,
		TokenType: domain.TokenType(row.TokenType),
		Amount:    numericToDecimal(row.Amount),
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func mapBalanceError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrInsufficientFunds
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrCheckViolation && pgErr.ConstraintName == "balances_amount_non_negative" {
		return domain.ErrInsufficientFunds
	}

	return err
}
