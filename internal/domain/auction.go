package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionStatusOpen      AuctionStatus = "open"
	AuctionStatusClosed    AuctionStatus = "closed"
	AuctionStatusSettled   AuctionStatus = "settled"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IsValid reports whether s is a known auction status.
func (s AuctionStatus) IsValid() bool {
	switch s {
	case AuctionStatusOpen, AuctionStatusClosed, AuctionStatusSettled, AuctionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further bids or settlement may alter the auction.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusSettled || s == AuctionStatusCancelled
}

// ParseAuctionStatus parses a status filter value.
func ParseAuctionStatus(s string) (AuctionStatus, error) {
	status := AuctionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

type AssetType string

const (
	AssetTypeRWA     AssetType = "rwa"
	AssetTypeService AssetType = "service"
	AssetTypeLand    AssetType = "land"
	AssetTypeEquity  AssetType = "equity"
)

func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeRWA, AssetTypeService, AssetTypeLand, AssetTypeEquity:
		return true
	}
	return false
}

// EndingSoonThreshold marks open auctions close to their deadline.
const EndingSoonThreshold = 24 * time.Hour

// Auction is a sealed-bid second-price auction for a single asset.
type Auction struct {
	ID               string
	AssetName        string
	AssetDescription string
	AssetType        AssetType
	TokenType        TokenType
	ReservePrice     decimal.Decimal
	StartTime        time.Time
	EndTime          time.Time
	Status           AuctionStatus

	// Populated only once the auction is settled.
	WinnerAccountID *string
	WinningBid      *decimal.Decimal
	ClearingPrice   *decimal.Decimal
	CapturedDelta   *decimal.Decimal
	SettledAt       *time.Time

	RefundsCompletedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks catalog fields of a newly seeded auction.
func (a *Auction) Validate() error {
	if strings.TrimSpace(a.AssetName) == "" {
		return fmt.Errorf("%w: asset name is required", ErrInvalidAuction)
	}
	if !a.AssetType.IsValid() {
		return fmt.Errorf("%w: unknown asset type %q", ErrInvalidAuction, a.AssetType)
	}
	if !a.TokenType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTokenType, a.TokenType)
	}
	if a.ReservePrice.IsNegative() || !a.ReservePrice.IsInteger() {
		return fmt.Errorf("%w: reserve price must be a non-negative whole number", ErrInvalidAuction)
	}
	if !a.EndTime.After(a.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidAuction)
	}
	return nil
}

// CheckBiddable validates the auction window against now. Status is checked
// before the deadline so a settled auction always reports ErrAuctionNotOpen.
func (a *Auction) CheckBiddable(now time.Time) error {
	if a.Status != AuctionStatusOpen {
		return ErrAuctionNotOpen
	}
	if !now.Before(a.EndTime) {
		return ErrAuctionEnded
	}
	if now.Before(a.StartTime) {
		return ErrAuctionNotStarted
	}
	return nil
}

// HasEnded reports whether the bidding window has closed.
func (a *Auction) HasEnded(now time.Time) bool {
	return !now.Before(a.EndTime)
}

// TimeRemaining describes how long an open auction still accepts bids.
type TimeRemaining struct {
	Hours        int
	Minutes      int
	IsEndingSoon bool
}

// TimeRemaining returns nil for auctions that are not open.
func (a *Auction) TimeRemaining(now time.Time) *TimeRemaining {
	if a.Status != AuctionStatusOpen {
		return nil
	}

	left := a.EndTime.Sub(now)
	if left < 0 {
		left = 0
	}

	hours := int(left / time.Hour)
	minutes := int((left % time.Hour) / time.Minute)

	return &TimeRemaining{
		Hours:        hours,
		Minutes:      minutes,
		IsEndingSoon: left < EndingSoonThreshold,
	}
}

// Settle records the outcome on the auction. Only open auctions may settle.
func (a *Auction) Settle(outcome *Outcome, at time.Time) error {
	if a.Status != AuctionStatusOpen {
		return ErrAlreadySettled
	}

	winner := outcome.Winner.AccountID
	winning := outcome.Winner.Amount
	clearing := outcome.ClearingPrice
	delta := outcome.CapturedDelta

	a.Status = AuctionStatusSettled
	a.WinnerAccountID = &winner
	a.WinningBid = &winning
	a.ClearingPrice = &clearing
	a.CapturedDelta = &delta
	a.SettledAt = &at
	a.UpdatedAt = at

	return nil
}

// Cancel marks an open auction cancelled.
func (a *Auction) Cancel(at time.Time) error {
	if a.Status != AuctionStatusOpen {
		return ErrAlreadySettled
	}
	a.Status = AuctionStatusCancelled
	a.UpdatedAt = at
	return nil
}
