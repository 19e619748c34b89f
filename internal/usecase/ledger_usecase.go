package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/infrastructure/metrics"
)

// LedgerUseCase exposes the balance ledger.
type LedgerUseCase struct {
	balanceRepo BalanceRepository
	clock       Clock
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(balanceRepo BalanceRepository, clock Clock, metrics *metrics.Metrics) *LedgerUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &LedgerUseCase{
		balanceRepo: balanceRepo,
		clock:       clock,
		metrics:     metrics,
	}
}

// AdjustInput is an operator adjustment of one balance.
type AdjustInput struct {
	AccountID string
	TokenType domain.TokenType
	Delta     decimal.Decimal
}

// Adjust applies a signed delta to one (account, token) balance.
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) (*domain.Balance, error) {
	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return nil, err
	}
	if !input.TokenType.IsValid() {
		return nil, domain.ErrInvalidTokenType
	}
	if err := domain.ValidateDelta(input.Delta); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	amount, err := uc.balanceRepo.Adjust(ctx, nil, input.AccountID, input.TokenType, input.Delta, now)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) && uc.metrics != nil {
			uc.metrics.InsufficientFunds.Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerAdjustments.WithLabelValues(direction(input.Delta)).Inc()
	}

	return &domain.Balance{
		AccountID: input.AccountID,
		TokenType: input.TokenType,
		Amount:    amount,
		UpdatedAt: now,
	}, nil
}

// GetBalance returns one balance; pairs never credited read as zero.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	if !token.IsValid() {
		return nil, domain.ErrInvalidTokenType
	}

	balance, err := uc.balanceRepo.Get(ctx, accountID, token)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalances returns every token type for the account, zero-filled.
func (uc *LedgerUseCase) GetBalances(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	balances, err := uc.balanceRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}

	return domain.FillBalances(accountID, balances), nil
}

func direction(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return "debit"
	}
	return "credit"
}
