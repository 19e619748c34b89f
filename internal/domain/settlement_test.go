package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newBid(id int64, account string, amount int64, offset time.Duration) *Bid {
	return &Bid{
		ID:          id,
		AuctionID:   "auc-1",
		AccountID:   account,
		Amount:      decimal.NewFromInt(amount),
		SubmittedAt: t0.Add(offset),
	}
}

func settledAuction(outcome *Outcome) *Auction {
	a := &Auction{ID: "auc-1", TokenType: TokenCOMM, Status: AuctionStatusOpen}
	_ = a.Settle(outcome, t0.Add(time.Hour))
	outcome.Winner.IsWinning = true
	return a
}

func TestRankBids_AmountDescending(t *testing.T) {
	bids := []*Bid{
		newBid(1, "b", 300, 0),
		newBid(2, "a", 500, time.Second),
		newBid(3, "c", 150, 2*time.Second),
	}

	ranked := RankBids(bids)

	check.Equal(t, 3, len(ranked))
	check.Equal(t, "a", ranked[0].AccountID)
	check.Equal(t, "b", ranked[1].AccountID)
	check.Equal(t, "c", ranked[2].AccountID)
	check.Equal(t, "b", bids[0].AccountID) // input untouched
}

func TestRankBids_TieBreaks(t *testing.T) {
	t.Run("earlier submission wins", func(t *testing.T) {
		ranked := RankBids([]*Bid{
			newBid(1, "late", 200, time.Minute),
			newBid(2, "early", 200, 0),
		})
		check.Equal(t, "early", ranked[0].AccountID)
	})

	t.Run("equal timestamps fall back to bid id", func(t *testing.T) {
		ranked := RankBids([]*Bid{
			newBid(9, "nine", 200, 0),
			newBid(4, "four", 200, 0),
		})
		check.Equal(t, "four", ranked[0].AccountID)
		check.Equal(t, "nine", ranked[1].AccountID)
	})
}

func TestComputeOutcome_SecondPrice(t *testing.T) {
	outcome, err := ComputeOutcome([]*Bid{
		newBid(1, "A", 500, 0),
		newBid(2, "B", 300, time.Second),
		newBid(3, "C", 150, 2*time.Second),
	})

	check.NoError(t, err)
	check.Equal(t, "A", outcome.Winner.AccountID)
	check.Equal(t, "B", outcome.RunnerUp.AccountID)
	check.Equal(t, "300", outcome.ClearingPrice.String())
	check.Equal(t, "200", outcome.CapturedDelta.String())
}

func TestComputeOutcome_SingleBidClearsAtOwnAmount(t *testing.T) {
	outcome, err := ComputeOutcome([]*Bid{newBid(1, "solo", 400, 0)})

	check.NoError(t, err)
	check.Equal(t, "solo", outcome.Winner.AccountID)
	check.Nil(t, outcome.RunnerUp)
	check.Equal(t, "400", outcome.ClearingPrice.String())
	check.Equal(t, "0", outcome.CapturedDelta.String())
}

func TestComputeOutcome_NoBids(t *testing.T) {
	_, err := ComputeOutcome(nil)
	check.True(t, errors.Is(err, ErrNoBids))
}

func TestSettlementCredits(t *testing.T) {
	bids := []*Bid{
		newBid(1, "A", 500, 0),
		newBid(2, "B", 300, time.Second),
		newBid(3, "C", 150, 2*time.Second),
	}
	outcome, err := ComputeOutcome(bids)
	check.NoError(t, err)
	auction := settledAuction(outcome)

	credits := SettlementCredits(auction, bids)

	got := map[string]string{}
	for _, c := range credits {
		check.Equal(t, TokenCOMM, c.TokenType)
		got[c.Key] = c.AccountID + "=" + c.Amount.String()
	}

	check.Equal(t, map[string]string{
		"rebate:1": "A=200",
		"refund:2": "B=300",
		"refund:3": "C=150",
	}, got)
}

func TestSettlementCredits_NoRebateForSingleBidder(t *testing.T) {
	bids := []*Bid{newBid(7, "solo", 400, 0)}
	outcome, err := ComputeOutcome(bids)
	check.NoError(t, err)

	credits := SettlementCredits(settledAuction(outcome), bids)
	check.Equal(t, 0, len(credits))
}

func TestSettlementCredits_UnsettledAuction(t *testing.T) {
	a := &Auction{ID: "auc-1", Status: AuctionStatusOpen}
	check.Equal(t, 0, len(SettlementCredits(a, []*Bid{newBid(1, "A", 10, 0)})))
}
