package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/vamledger/internal/domain"
)

// AuctionUseCase serves the auction catalog.
type AuctionUseCase struct {
	txManager   TransactionManager
	auctionRepo AuctionRepository
	bidRepo     BidRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	clock       Clock
}

func NewAuctionUseCase(
	txManager TransactionManager,
	auctionRepo AuctionRepository,
	bidRepo BidRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
) *AuctionUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &AuctionUseCase{
		txManager:   txManager,
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		clock:       clock,
	}
}

// AuctionView is an auction as exposed to callers. Bid amounts are never part
// of it; only the count is.
type AuctionView struct {
	Auction       *domain.Auction
	BidCount      int
	TimeRemaining *domain.TimeRemaining
}

type ListAuctionsInput struct {
	Status string
	Limit  int
	Offset int
}

// ListAuctions lists auctions, optionally filtered by status. Open auctions
// report the time left to bid.
func (uc *AuctionUseCase) ListAuctions(ctx context.Context, input ListAuctionsInput) ([]*AuctionView, error) {
	var status *domain.AuctionStatus
	if strings.TrimSpace(input.Status) != "" {
		s, err := domain.ParseAuctionStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = &s
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	auctions, err := uc.auctionRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}

	now := uc.clock.Now()
	views := make([]*AuctionView, 0, len(auctions))
	for _, a := range auctions {
		views = append(views, &AuctionView{
			Auction:       a,
			TimeRemaining: a.TimeRemaining(now),
		})
	}

	return views, nil
}

// GetAuction returns one auction with its bid count.
func (uc *AuctionUseCase) GetAuction(ctx context.Context, id string) (*AuctionView, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := uc.bidRepo.CountByAuction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count bids: %w", err)
	}

	return &AuctionView{
		Auction:       auction,
		BidCount:      count,
		TimeRemaining: auction.TimeRemaining(uc.clock.Now()),
	}, nil
}

// ListMemberBids returns the caller's own bids, newest first.
func (uc *AuctionUseCase) ListMemberBids(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	bids, err := uc.bidRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}

	return bids, nil
}

type CreateAuctionInput struct {
	AssetName        string
	AssetDescription string
	AssetType        domain.AssetType
	TokenType        domain.TokenType
	ReservePrice     decimal.Decimal
	StartTime        time.Time
	EndTime          time.Time
}

// CreateAuction seeds a new open auction into the catalog.
func (uc *AuctionUseCase) CreateAuction(ctx context.Context, input CreateAuctionInput) (*domain.Auction, error) {
	now := uc.clock.Now()

	token := input.TokenType
	if token == "" {
		token = domain.DefaultSettlementToken
	}

	start := input.StartTime
	if start.IsZero() {
		start = now
	}

	auction := &domain.Auction{
		ID:               uc.idGen.Generate(),
		AssetName:        strings.TrimSpace(input.AssetName),
		AssetDescription: input.AssetDescription,
		AssetType:        input.AssetType,
		TokenType:        token,
		ReservePrice:     input.ReservePrice,
		StartTime:        start.UTC(),
		EndTime:          input.EndTime.UTC(),
		Status:           domain.AuctionStatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := auction.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.auctionRepo.Create(txCtx, tx, auction); err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   auction.ID,
		AggregateType: domain.AggregateTypeAuction,
		EventType:     domain.EventTypeAuctionCreated,
		Payload: map[string]any{
			"auction_id":    auction.ID,
			"asset_name":    auction.AssetName,
			"reserve_price": auction.ReservePrice.String(),
			"end_time":      auction.EndTime.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("commit auction: %w", err)
	}

	return auction, nil
}

// CancelAuction administratively cancels an open auction that has no bids.
func (uc *AuctionUseCase) CancelAuction(ctx context.Context, id string) (*domain.Auction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	auction, err := uc.auctionRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if auction.Status != domain.AuctionStatusOpen {
		return nil, domain.ErrAlreadySettled
	}

	bids, err := uc.bidRepo.ListByAuction(txCtx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	if len(bids) > 0 {
		return nil, domain.ErrAuctionHasBids
	}

	now := uc.clock.Now()
	if err := auction.Cancel(now); err != nil {
		return nil, err
	}
	if err := uc.auctionRepo.MarkCancelled(txCtx, tx, id, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   auction.ID,
		AggregateType: domain.AggregateTypeAuction,
		EventType:     domain.EventTypeAuctionCancelled,
		Payload: map[string]any{
			"auction_id": auction.ID,
			"reason":     "administrative",
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}

	return auction, nil
}
