package postgres

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/iho/vamledger/internal/usecase/mocks"
)

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("begin failed")
	mockPool.ExpectBegin().WillReturnError(mockErr)

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if !errors.Is(err, mockErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

func TestTxRollbackAfterCommitIsNoop(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback after commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestTxRollbackTwice(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectRollback()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := tx.Rollback(context.Background()); err != nil {
			t.Fatalf("rollback %d failed: %v", i, err)
		}
	}

	assertExpectations(t, mockPool)
}

func TestQueriesForRunsInsideTransaction(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE auctions").
		WithArgs("a1", timeToPgTimestamptz(repoNow)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	marked, err := newAuctionRepository(mockPool).MarkRefundsCompleted(context.Background(), tx, "a1", repoNow)
	if err != nil {
		t.Fatalf("mark refunds completed: %v", err)
	}
	if !marked {
		t.Fatal("expected marker to be set")
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestQueriesForRejectsForeignTransaction(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a transaction not started by TxManager")
		}
	}()

	queriesFor(nil, &mocks.MockTransaction{})
}

func TestULIDGeneratorIsMonotonic(t *testing.T) {
	gen := NewULIDGenerator()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.Generate()
	}

	if !sort.StringsAreSorted(ids) {
		t.Fatal("ids generated in the same millisecond must be increasing")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}
