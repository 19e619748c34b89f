package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func openAuction(start, end time.Time) *Auction {
	return &Auction{
		ID:           "auc-1",
		AssetName:    "Orchard plot 4",
		AssetType:    AssetTypeLand,
		TokenType:    TokenCOMM,
		ReservePrice: decimal.NewFromInt(100),
		StartTime:    start,
		EndTime:      end,
		Status:       AuctionStatusOpen,
	}
}

func TestAuctionCheckBiddable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		auction *Auction
		want    error
	}{
		{"inside window", openAuction(now.Add(-time.Hour), now.Add(time.Hour)), nil},
		{"at end time", openAuction(now.Add(-time.Hour), now), ErrAuctionEnded},
		{"after end time", openAuction(now.Add(-2*time.Hour), now.Add(-time.Hour)), ErrAuctionEnded},
		{"before start", openAuction(now.Add(time.Hour), now.Add(2*time.Hour)), ErrAuctionNotStarted},
	}

	settled := openAuction(now.Add(-time.Hour), now.Add(-time.Minute))
	settled.Status = AuctionStatusSettled
	tests = append(tests, struct {
		name    string
		auction *Auction
		want    error
	}{"settled and ended reports not open", settled, ErrAuctionNotOpen})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auction.CheckBiddable(now)
			if tt.want == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuctionTimeRemaining(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("ending soon", func(t *testing.T) {
		a := openAuction(now.Add(-time.Hour), now.Add(5*time.Hour+30*time.Minute))
		tr := a.TimeRemaining(now)
		if tr == nil || tr.Hours != 5 || tr.Minutes != 30 || !tr.IsEndingSoon {
			t.Fatalf("unexpected time remaining: %+v", tr)
		}
	})

	t.Run("more than a day", func(t *testing.T) {
		a := openAuction(now.Add(-time.Hour), now.Add(30*time.Hour))
		tr := a.TimeRemaining(now)
		if tr == nil || tr.Hours != 30 || tr.IsEndingSoon {
			t.Fatalf("unexpected time remaining: %+v", tr)
		}
	})

	t.Run("past deadline clamps to zero", func(t *testing.T) {
		a := openAuction(now.Add(-2*time.Hour), now.Add(-time.Hour))
		tr := a.TimeRemaining(now)
		if tr == nil || tr.Hours != 0 || tr.Minutes != 0 {
			t.Fatalf("unexpected time remaining: %+v", tr)
		}
	})

	t.Run("not open", func(t *testing.T) {
		a := openAuction(now.Add(-time.Hour), now.Add(time.Hour))
		a.Status = AuctionStatusCancelled
		if tr := a.TimeRemaining(now); tr != nil {
			t.Fatalf("expected nil for cancelled auction, got %+v", tr)
		}
	})
}

func TestAuctionSettleAndCancel(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	a := openAuction(now.Add(-time.Hour), now)
	outcome := &Outcome{
		Winner:        &Bid{ID: 1, AccountID: "A", Amount: decimal.NewFromInt(500)},
		ClearingPrice: decimal.NewFromInt(300),
		CapturedDelta: decimal.NewFromInt(200),
	}

	if err := a.Settle(outcome, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != AuctionStatusSettled || *a.WinnerAccountID != "A" || a.ClearingPrice.String() != "300" {
		t.Fatalf("unexpected settled auction: %+v", a)
	}

	if err := a.Settle(outcome, now); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled on second settle, got %v", err)
	}
	if err := a.Cancel(now); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled on cancel after settle, got %v", err)
	}
}

func TestAuctionValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()

	valid := openAuction(now, now.Add(time.Hour))
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid auction, got %v", err)
	}

	backwards := openAuction(now, now.Add(-time.Hour))
	if err := backwards.Validate(); !errors.Is(err, ErrInvalidAuction) {
		t.Fatalf("expected ErrInvalidAuction for end before start, got %v", err)
	}

	fractional := openAuction(now, now.Add(time.Hour))
	fractional.ReservePrice = decimal.RequireFromString("9.5")
	if err := fractional.Validate(); !errors.Is(err, ErrInvalidAuction) {
		t.Fatalf("expected ErrInvalidAuction for fractional reserve, got %v", err)
	}

	badToken := openAuction(now, now.Add(time.Hour))
	badToken.TokenType = "GOLD"
	if err := badToken.Validate(); !errors.Is(err, ErrInvalidTokenType) {
		t.Fatalf("expected ErrInvalidTokenType, got %v", err)
	}
}

func TestParseAuctionStatus(t *testing.T) {
	t.Parallel()

	if s, err := ParseAuctionStatus("OPEN"); err != nil || s != AuctionStatusOpen {
		t.Fatalf("expected open, got %q (%v)", s, err)
	}
	if _, err := ParseAuctionStatus("pending"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
