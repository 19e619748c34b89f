package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountIDLength = 128
	MaxBidAmount       = "1000000000000" // 1 trillion units
	MaxAdjustment      = "1000000000000"
)

var accountIDRegex = regexp.MustCompile(`^[A-Za-z0-9._:@-]+$`)

// ValidateAccountID validates a ledger account identifier.
func ValidateAccountID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: account id cannot be empty", ErrInvalidAccountID)
	}

	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidAccountID, MaxAccountIDLength)
	}

	if !accountIDRegex.MatchString(id) {
		return fmt.Errorf("%w: contains forbidden characters", ErrInvalidAccountID)
	}

	return nil
}

// ValidateAmount validates a bid amount: positive, whole, below max.
func ValidateAmount(amount, limit decimal.Decimal) error {
	if !amount.IsPositive() || !amount.IsInteger() {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(limit) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, limit)
	}

	return nil
}

// ValidateDelta validates a ledger adjustment: non-zero, whole, bounded.
func ValidateDelta(delta decimal.Decimal) error {
	if delta.IsZero() || !delta.IsInteger() {
		return ErrInvalidDelta
	}

	limit := decimal.RequireFromString(MaxAdjustment)
	if delta.Abs().GreaterThan(limit) {
		return fmt.Errorf("%w: magnitude exceeds %s", ErrInvalidDelta, MaxAdjustment)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 500
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
