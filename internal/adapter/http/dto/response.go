package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// TimeRemainingResponse is the bidding time left on an open auction.
type TimeRemainingResponse struct {
	Hours        int  `json:"hours"`
	Minutes      int  `json:"minutes"`
	IsEndingSoon bool `json:"is_ending_soon"`
}

// VAMResultResponse is a settlement outcome.
type VAMResultResponse struct {
	WinnerSEID     string          `json:"winner_seid"`
	WinningBid     decimal.Decimal `json:"winning_bid"`
	PricePaid      decimal.Decimal `json:"price_paid"`
	DeltaToCommons decimal.Decimal `json:"delta_to_commons"`
}

// AuctionResponse represents an auction in API responses. Individual bid
// amounts are never included.
type AuctionResponse struct {
	ID                 string                 `json:"id"`
	AssetName          string                 `json:"asset_name"`
	AssetDescription   string                 `json:"asset_description,omitempty"`
	AssetType          string                 `json:"asset_type"`
	TokenType          string                 `json:"token_type"`
	ReservePrice       decimal.Decimal        `json:"reserve_price"`
	StartTime          time.Time              `json:"start_time"`
	EndTime            time.Time              `json:"end_time"`
	Status             string                 `json:"status"`
	BidCount           *int                   `json:"bid_count,omitempty"`
	TimeRemaining      *TimeRemainingResponse `json:"time_remaining,omitempty"`
	VAMResult          *VAMResultResponse     `json:"vam_result,omitempty"`
	SettledAt          *time.Time             `json:"settled_at,omitempty"`
	RefundsCompletedAt *time.Time             `json:"refunds_completed_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

// AuctionFromDomain converts a domain auction to a response. bidCount is
// omitted when nil.
func AuctionFromDomain(a *domain.Auction, bidCount *int, remaining *domain.TimeRemaining) *AuctionResponse {
	resp := &AuctionResponse{
		ID:                 a.ID,
		AssetName:          a.AssetName,
		AssetDescription:   a.AssetDescription,
		AssetType:          string(a.AssetType),
		TokenType:          string(a.TokenType),
		ReservePrice:       a.ReservePrice,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             string(a.Status),
		BidCount:           bidCount,
		SettledAt:          a.SettledAt,
		RefundsCompletedAt: a.RefundsCompletedAt,
		CreatedAt:          a.CreatedAt,
	}

	if remaining != nil {
		resp.TimeRemaining = &TimeRemainingResponse{
			Hours:        remaining.Hours,
			Minutes:      remaining.Minutes,
			IsEndingSoon: remaining.IsEndingSoon,
		}
	}

	if a.Status == domain.AuctionStatusSettled && a.WinnerAccountID != nil {
		resp.VAMResult = &VAMResultResponse{
			WinnerSEID:     *a.WinnerAccountID,
			WinningBid:     decimalOrZero(a.WinningBid),
			PricePaid:      decimalOrZero(a.ClearingPrice),
			DeltaToCommons: decimalOrZero(a.CapturedDelta),
		}
	}

	return resp
}

// AuctionViewFromUseCase converts a single-auction view, including its bid count.
func AuctionViewFromUseCase(v *usecase.AuctionView) *AuctionResponse {
	count := v.BidCount
	return AuctionFromDomain(v.Auction, &count, v.TimeRemaining)
}

// AuctionListResponse wraps a page of auctions.
type AuctionListResponse struct {
	Auctions []*AuctionResponse `json:"auctions"`
	Count    int                `json:"count"`
}

// AuctionListFromUseCase converts catalog views. Listings carry no bid counts.
func AuctionListFromUseCase(views []*usecase.AuctionView) *AuctionListResponse {
	auctions := make([]*AuctionResponse, len(views))
	for i, v := range views {
		auctions[i] = AuctionFromDomain(v.Auction, nil, v.TimeRemaining)
	}
	return &AuctionListResponse{Auctions: auctions, Count: len(auctions)}
}

// PlaceBidResponse confirms an accepted bid.
type PlaceBidResponse struct {
	BidID        int64           `json:"bid_id"`
	AuctionID    string          `json:"auction_id"`
	TokenType    string          `json:"token_type"`
	AmountLocked decimal.Decimal `json:"amount_locked"`
	NewBalance   decimal.Decimal `json:"new_balance"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// PlaceBidFromUseCase converts a bid acceptance result.
func PlaceBidFromUseCase(r *usecase.PlaceBidResult) *PlaceBidResponse {
	return &PlaceBidResponse{
		BidID:        r.Bid.ID,
		AuctionID:    r.Bid.AuctionID,
		TokenType:    string(r.TokenType),
		AmountLocked: r.AmountLocked,
		NewBalance:   r.NewBalance,
		SubmittedAt:  r.Bid.SubmittedAt,
	}
}

// SettlementResponse is the result of settling an auction.
type SettlementResponse struct {
	AuctionID      string             `json:"auction_id"`
	Status         string             `json:"status"`
	BidCount       int                `json:"bid_count"`
	VAMResult      *VAMResultResponse `json:"vam_result,omitempty"`
	CreditsApplied int                `json:"credits_applied"`
	RefundsPending bool               `json:"refunds_pending"`
}

// SettlementFromUseCase converts a settlement result. Cancelled auctions have
// no vam_result.
func SettlementFromUseCase(r *usecase.SettlementResult) *SettlementResponse {
	resp := &SettlementResponse{
		AuctionID:      r.AuctionID,
		Status:         string(r.Status),
		BidCount:       r.BidCount,
		CreditsApplied: r.CreditsApplied,
		RefundsPending: r.RefundsPending,
	}
	if r.Status == domain.AuctionStatusSettled {
		resp.VAMResult = &VAMResultResponse{
			WinnerSEID:     r.WinnerAccountID,
			WinningBid:     r.WinningBid,
			PricePaid:      r.ClearingPrice,
			DeltaToCommons: r.CapturedDelta,
		}
	}
	return resp
}

// BalanceResponse represents one token balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	TokenType string          `json:"token_type"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// BalanceFromDomain converts a domain balance.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	resp := &BalanceResponse{
		AccountID: b.AccountID,
		TokenType: string(b.TokenType),
		Amount:    b.Amount,
	}
	if !b.UpdatedAt.IsZero() {
		updated := b.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// BalancesResponse lists every token balance of one account.
type BalancesResponse struct {
	AccountID string             `json:"account_id"`
	Balances  []*BalanceResponse `json:"balances"`
}

// BalancesFromDomain converts an account's balances.
func BalancesFromDomain(accountID string, balances []*domain.Balance) *BalancesResponse {
	out := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = BalanceFromDomain(b)
	}
	return &BalancesResponse{AccountID: accountID, Balances: out}
}

// BidResponse is a member's own bid.
type BidResponse struct {
	BidID       int64           `json:"bid_id"`
	AuctionID   string          `json:"auction_id"`
	Amount      decimal.Decimal `json:"amount"`
	SubmittedAt time.Time       `json:"submitted_at"`
	IsWinning   bool            `json:"is_winning"`
	RefundedAt  *time.Time      `json:"refunded_at,omitempty"`
}

// BidsFromDomain converts a member's bids.
func BidsFromDomain(bids []*domain.Bid) []*BidResponse {
	out := make([]*BidResponse, len(bids))
	for i, b := range bids {
		out[i] = &BidResponse{
			BidID:       b.ID,
			AuctionID:   b.AuctionID,
			Amount:      b.Amount,
			SubmittedAt: b.SubmittedAt,
			IsWinning:   b.IsWinning,
			RefundedAt:  b.RefundedAt,
		}
	}
	return out
}

// BidListResponse wraps a page of a member's bids.
type BidListResponse struct {
	Bids []*BidResponse `json:"bids"`
}

// ReconciliationResponse summarizes a reconciliation pass.
type ReconciliationResponse struct {
	AuctionsScanned   int                     `json:"auctions_scanned"`
	AuctionsCompleted int                     `json:"auctions_completed"`
	CreditsApplied    int                     `json:"credits_applied"`
	CreditsFailed     int                     `json:"credits_failed"`
	Results           []*ReconciliationResult `json:"results"`
	CheckedAt         time.Time               `json:"checked_at"`
}

// ReconciliationResult is the repair outcome for one auction.
type ReconciliationResult struct {
	AuctionID      string `json:"auction_id"`
	CreditsApplied int    `json:"credits_applied"`
	CreditsSkipped int    `json:"credits_skipped"`
	CreditsFailed  int    `json:"credits_failed"`
	Completed      bool   `json:"completed"`
}

// ReconciliationFromUseCase converts a reconciliation report.
func ReconciliationFromUseCase(r *usecase.ReconciliationReport) *ReconciliationResponse {
	results := make([]*ReconciliationResult, len(r.Results))
	for i, res := range r.Results {
		results[i] = &ReconciliationResult{
			AuctionID:      res.AuctionID,
			CreditsApplied: res.CreditsApplied,
			CreditsSkipped: res.CreditsSkipped,
			CreditsFailed:  res.CreditsFailed,
			Completed:      res.Completed,
		}
	}
	return &ReconciliationResponse{
		AuctionsScanned:   r.AuctionsScanned,
		AuctionsCompleted: r.AuctionsCompleted,
		CreditsApplied:    r.CreditsApplied,
		CreditsFailed:     r.CreditsFailed,
		Results:           results,
		CheckedAt:         r.CheckedAt,
	}
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
