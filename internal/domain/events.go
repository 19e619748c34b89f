package domain

import "time"

// Event types
const (
	EventTypeAuctionCreated   = "auction.created"
	EventTypeAuctionSettled   = "auction.settled"
	EventTypeAuctionCancelled = "auction.cancelled"
	EventTypeRefundsCompleted = "auction.refunds_completed"
	EventTypeBidPlaced        = "bid.placed"
)

// Aggregate types
const (
	AggregateTypeAuction = "auction"
	AggregateTypeBid     = "bid"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BidPlacedEvent payload. Bids are sealed, so no amount.
type BidPlacedEvent struct {
	BidID     int64  `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	AccountID string `json:"account_id"`
}

// AuctionSettledEvent payload
type AuctionSettledEvent struct {
	AuctionID     string `json:"auction_id"`
	WinnerID      string `json:"winner_account_id"`
	WinningBid    string `json:"winning_bid"`
	ClearingPrice string `json:"clearing_price"`
	CapturedDelta string `json:"captured_delta"`
	TokenType     string `json:"token_type"`
	BidCount      int    `json:"bid_count"`
}

// AuctionCancelledEvent payload
type AuctionCancelledEvent struct {
	AuctionID string `json:"auction_id"`
	Reason    string `json:"reason"`
}

// AuctionCreatedEvent payload
type AuctionCreatedEvent struct {
	AuctionID    string `json:"auction_id"`
	AssetName    string `json:"asset_name"`
	ReservePrice string `json:"reserve_price"`
	EndTime      string `json:"end_time"`
}

// RefundsCompletedEvent payload
type RefundsCompletedEvent struct {
	AuctionID string `json:"auction_id"`
	Credits   int    `json:"credits"`
}
