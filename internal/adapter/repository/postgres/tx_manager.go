package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/vamledger/internal/infrastructure/postgres/generated"
	"github.com/iho/vamledger/internal/usecase"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on a pgx pool. Bid
// acceptance, settlement and every keyed credit each run in one of its
// transactions.
type TxManager struct {
	pool pgxPool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction. Use cases defer Rollback unconditionally, so
// once Commit has been attempted Rollback does nothing.
type Tx struct {
	tx pgx.Tx

	mu       sync.Mutex
	finished bool
}

// Commit commits the transaction. An error here does not tell whether the
// commit reached the server.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	t.finished = true
	t.mu.Unlock()

	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction unless it was already committed or
// rolled back.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return nil
	}
	t.finished = true
	t.mu.Unlock()

	return t.tx.Rollback(ctx)
}

// queriesFor binds base to tx, or returns it unchanged for autocommit calls.
func queriesFor(base *generated.Queries, tx usecase.Transaction) *generated.Queries {
	if tx == nil {
		return base
	}

	pgTx, ok := tx.(*Tx)
	if !ok {
		panic(fmt.Sprintf("postgres: transaction of type %T was not started by TxManager", tx))
	}

	return base.WithTx(pgTx.tx)
}
