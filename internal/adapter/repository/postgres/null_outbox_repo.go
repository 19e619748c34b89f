package postgres

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
)

// NullOutboxRepository backs deployments running with OUTBOX_ENABLED=false.
// Events are not stored, but settlement outcomes are still logged: the
// captured delta is claimed by treasury tooling and must stay traceable.
type NullOutboxRepository struct {
	logger zerolog.Logger
}

func NewNullOutboxRepository(log zerolog.Logger) *NullOutboxRepository {
	return &NullOutboxRepository{logger: log}
}

// Create drops the event.
func (r *NullOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if event.EventType == domain.EventTypeAuctionSettled {
		r.logger.Info().
			Str("event_id", event.ID).
			Str("auction_id", event.AggregateID).
			Interface("payload", event.Payload).
			Msg("outbox disabled, settlement event not stored")
		return nil
	}

	r.logger.Debug().
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Msg("outbox disabled, event dropped")
	return nil
}

func (r *NullOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return nil
}

func (r *NullOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}
