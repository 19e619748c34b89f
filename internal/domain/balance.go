package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenType is a unit-of-value category tracked independently per account.
type TokenType string

const (
	TokenCOMM TokenType = "COMM"
	TokenPMT  TokenType = "PMT"
	TokenPCT  TokenType = "PCT"
	TokenPDT  TokenType = "PDT"
	TokenJLZ  TokenType = "JLZ"
	TokenXPT  TokenType = "XPT"
)

// DefaultSettlementToken is the token auctions settle in unless seeded otherwise.
const DefaultSettlementToken = TokenCOMM

var tokenTypes = []TokenType{TokenCOMM, TokenPMT, TokenPCT, TokenPDT, TokenJLZ, TokenXPT}

// TokenTypes returns every known token type in display order.
func TokenTypes() []TokenType {
	out := make([]TokenType, len(tokenTypes))
	copy(out, tokenTypes)
	return out
}

// IsValid reports whether t is a known token type.
func (t TokenType) IsValid() bool {
	for _, known := range tokenTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTokenType normalizes and validates a token type string.
func ParseTokenType(s string) (TokenType, error) {
	t := TokenType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTokenType, s)
	}
	return t, nil
}

// Balance is the amount an account holds in one token type.
type Balance struct {
	AccountID string
	TokenType TokenType
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// FillBalances returns one balance per known token type, using zero for
// pairs that have never been credited.
func FillBalances(accountID string, known []*Balance) []*Balance {
	byToken := make(map[TokenType]*Balance, len(known))
	for _, b := range known {
		byToken[b.TokenType] = b
	}

	out := make([]*Balance, 0, len(tokenTypes))
	for _, t := range tokenTypes {
		if b, ok := byToken[t]; ok {
			out = append(out, b)
			continue
		}
		out = append(out, &Balance{AccountID: accountID, TokenType: t, Amount: decimal.Zero})
	}

	return out
}
