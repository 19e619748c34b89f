package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RankBids returns bids ordered by amount descending, then earliest
// submission, then lowest id. The input slice is not modified.
func RankBids(bids []*Bid) []*Bid {
	ranked := make([]*Bid, len(bids))
	copy(ranked, bids)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID < b.ID
	})

	return ranked
}

// Outcome is the result of a second-price auction.
type Outcome struct {
	Winner        *Bid
	RunnerUp      *Bid
	Ranked        []*Bid
	ClearingPrice decimal.Decimal
	CapturedDelta decimal.Decimal
}

// ComputeOutcome picks the highest-ranked bid as winner. The winner pays the
// runner-up's amount, or its own amount when it is the only bid.
func ComputeOutcome(bids []*Bid) (*Outcome, error) {
	if len(bids) == 0 {
		return nil, ErrNoBids
	}

	ranked := RankBids(bids)
	outcome := &Outcome{
		Winner:        ranked[0],
		Ranked:        ranked,
		ClearingPrice: ranked[0].Amount,
	}

	if len(ranked) > 1 {
		outcome.RunnerUp = ranked[1]
		outcome.ClearingPrice = ranked[1].Amount
	}

	outcome.CapturedDelta = outcome.Winner.Amount.Sub(outcome.ClearingPrice)

	return outcome, nil
}

type CreditKind string

const (
	CreditKindRefund CreditKind = "refund"
	CreditKindRebate CreditKind = "rebate"
)

// Credit is a ledger credit owed to a bidder once an auction settles.
type Credit struct {
	Key       string
	Kind      CreditKind
	BidID     int64
	AccountID string
	TokenType TokenType
	Amount    decimal.Decimal
}

// SettlementCredits lists what a settled auction owes its bidders: a full
// refund for every losing bid and, when the clearing price is below the
// winning amount, a rebate of the difference to the winner. The winning bid
// is identified by its IsWinning flag.
func SettlementCredits(auction *Auction, bids []*Bid) []Credit {
	if auction.Status != AuctionStatusSettled || auction.ClearingPrice == nil {
		return nil
	}

	credits := make([]Credit, 0, len(bids))
	for _, bid := range bids {
		if !bid.IsWinning {
			credits = append(credits, Credit{
				Key:       bid.RefundKey(),
				Kind:      CreditKindRefund,
				BidID:     bid.ID,
				AccountID: bid.AccountID,
				TokenType: auction.TokenType,
				Amount:    bid.Amount,
			})
			continue
		}

		rebate := bid.Amount.Sub(*auction.ClearingPrice)
		if rebate.IsPositive() {
			credits = append(credits, Credit{
				Key:       bid.RebateKey(),
				Kind:      CreditKindRebate,
				BidID:     bid.ID,
				AccountID: bid.AccountID,
				TokenType: auction.TokenType,
				Amount:    rebate,
			})
		}
	}

	return credits
}
