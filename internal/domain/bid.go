package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bid is a sealed bid. Its amount is reserved from the bidder's balance at
// acceptance and never changes afterwards.
type Bid struct {
	ID          int64
	AuctionID   string
	AccountID   string
	Amount      decimal.Decimal
	SubmittedAt time.Time
	IsWinning   bool
	RefundedAt  *time.Time
}

// RefundKey identifies the full refund credited to a losing bid.
func (b *Bid) RefundKey() string {
	return fmt.Sprintf("refund:%d", b.ID)
}

// RebateKey identifies the rebate credited to a winning bid.
func (b *Bid) RebateKey() string {
	return fmt.Sprintf("rebate:%d", b.ID)
}
