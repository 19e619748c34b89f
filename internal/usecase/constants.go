package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// SettlementBatchSize caps how many ended auctions one scheduled run settles.
	SettlementBatchSize = 100

	// ReconciliationBatchSize caps how many settled auctions one pass repairs.
	ReconciliationBatchSize = 100
)
