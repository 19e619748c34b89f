package domain

import "errors"

var (
	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a positive whole number")
	ErrInvalidDelta      = errors.New("delta must be a non-zero whole number")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrInvalidAccountID  = errors.New("invalid account id")

	// Auction errors
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionNotOpen    = errors.New("auction is not open")
	ErrAuctionEnded      = errors.New("auction has ended")
	ErrAuctionNotStarted = errors.New("auction has not started")
	ErrAlreadySettled    = errors.New("auction already settled")
	ErrAuctionHasBids    = errors.New("auction has bids and cannot be cancelled")
	ErrInvalidStatus     = errors.New("invalid auction status")
	ErrInvalidAuction    = errors.New("invalid auction")

	// Bid errors
	ErrBidBelowReserve = errors.New("bid is below the reserve price")
	ErrDuplicateBid    = errors.New("account has already bid on this auction")
	ErrNoBids          = errors.New("auction has no bids")
	ErrBidNotFound     = errors.New("bid not found")
)
