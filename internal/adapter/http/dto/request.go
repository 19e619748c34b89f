package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
)

// PlaceBidRequest represents a sealed bid submission.
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *PlaceBidRequest) ToUseCaseInput(auctionID, accountID string) usecase.PlaceBidInput {
	return usecase.PlaceBidInput{
		AuctionID: auctionID,
		AccountID: accountID,
		Amount:    r.Amount,
	}
}

// CreateAuctionRequest seeds an auction into the catalog.
type CreateAuctionRequest struct {
	AssetName        string          `json:"asset_name"        validate:"required,max=200"`
	AssetDescription string          `json:"asset_description" validate:"max=4000"`
	AssetType        string          `json:"asset_type"        validate:"required,oneof=rwa service land equity"`
	TokenType        string          `json:"token_type"        validate:"omitempty,oneof=COMM PMT PCT PDT JLZ XPT"`
	ReservePrice     decimal.Decimal `json:"reserve_price"`
	StartTime        *time.Time      `json:"start_time,omitempty"`
	EndTime          time.Time       `json:"end_time"          validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAuctionRequest) ToUseCaseInput() usecase.CreateAuctionInput {
	input := usecase.CreateAuctionInput{
		AssetName:        r.AssetName,
		AssetDescription: r.AssetDescription,
		AssetType:        domain.AssetType(r.AssetType),
		TokenType:        domain.TokenType(r.TokenType),
		ReservePrice:     r.ReservePrice,
		EndTime:          r.EndTime,
	}
	if r.StartTime != nil {
		input.StartTime = *r.StartTime
	}
	return input
}

// AdjustBalanceRequest mints (positive delta) or burns (negative delta) tokens.
type AdjustBalanceRequest struct {
	AccountID string          `json:"account_id" validate:"required,max=128"`
	TokenType string          `json:"token_type" validate:"required,oneof=COMM PMT PCT PDT JLZ XPT"`
	Delta     decimal.Decimal `json:"delta"`
}

// ToUseCaseInput converts to use case input.
func (r *AdjustBalanceRequest) ToUseCaseInput() usecase.AdjustInput {
	return usecase.AdjustInput{
		AccountID: r.AccountID,
		TokenType: domain.TokenType(r.TokenType),
		Delta:     r.Delta,
	}
}
