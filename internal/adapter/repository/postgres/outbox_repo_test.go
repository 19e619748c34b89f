package postgres

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
)

var (
	_ usecase.OutboxRepository = (*OutboxRepository)(nil)
	_ usecase.OutboxRepository = (*NullOutboxRepository)(nil)
)

var outboxColumns = []string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}

func TestOutboxRepositoryCreateInTransaction(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectQuery("INSERT INTO outbox_events").
		WithArgs("ev-1", "a1", domain.AggregateTypeAuction, domain.EventTypeAuctionSettled,
			[]byte(`{"auction_id":"a1"}`), timeToPgTimestamptz(repoNow), false).
		WillReturnRows(pgxmock.NewRows(outboxColumns).
			AddRow("ev-1", "a1", domain.AggregateTypeAuction, domain.EventTypeAuctionSettled,
				[]byte(`{"auction_id":"a1"}`), timeToPgTimestamptz(repoNow), pgtype.Timestamptz{}, false))
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	err = newOutboxRepository(mockPool).Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "ev-1",
		AggregateID:   "a1",
		AggregateType: domain.AggregateTypeAuction,
		EventType:     domain.EventTypeAuctionSettled,
		Payload:       map[string]any{"auction_id": "a1"},
		CreatedAt:     repoNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM outbox_events").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows(outboxColumns).
			AddRow("ev-1", "b1", domain.AggregateTypeBid, domain.EventTypeBidPlaced,
				[]byte(`{"bid_id":1}`), timeToPgTimestamptz(repoNow), pgtype.Timestamptz{}, false))

	events, err := newOutboxRepository(mockPool).GetUnpublished(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].PublishedAt != nil || events[0].Payload["bid_id"] != float64(1) {
		t.Fatalf("unexpected event %+v", events[0])
	}

	assertExpectations(t, mockPool)
}

func TestNullOutboxRepositoryLogsSettlement(t *testing.T) {
	var buf bytes.Buffer
	repo := NewNullOutboxRepository(zerolog.New(&buf).Level(zerolog.InfoLevel))

	events := []*domain.OutboxEvent{
		{ID: "ev-1", AggregateID: "1", AggregateType: domain.AggregateTypeBid, EventType: domain.EventTypeBidPlaced},
		{
			ID:            "ev-2",
			AggregateID:   "a1",
			AggregateType: domain.AggregateTypeAuction,
			EventType:     domain.EventTypeAuctionSettled,
			Payload:       map[string]any{"captured_delta": "200"},
		},
	}
	for _, e := range events {
		if err := repo.Create(context.Background(), nil, e); err != nil {
			t.Fatalf("create %s: %v", e.ID, err)
		}
	}

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected only the settlement to be logged at info, got %q", out)
	}
	if !strings.Contains(out, `"auction_id":"a1"`) || !strings.Contains(out, `"captured_delta":"200"`) {
		t.Fatalf("settlement log misses the outcome: %q", out)
	}

	unpublished, err := repo.GetUnpublished(context.Background(), 10)
	if err != nil || len(unpublished) != 0 {
		t.Fatalf("expected nothing stored, got %v, %v", unpublished, err)
	}
}
