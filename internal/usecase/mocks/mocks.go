package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/vamledger/internal/domain"
	"github.com/iho/vamledger/internal/usecase"
	"github.com/shopspring/decimal"
)

// MockBalanceRepository is an in-memory BalanceRepository. Each adjustment
// is applied under one lock, which mirrors the single-statement update of
// the real store.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	ops      map[string]bool

	AdjustFunc     func(ctx context.Context, tx usecase.Transaction, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
	AdjustOnceFunc func(ctx context.Context, tx usecase.Transaction, opKey, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, bool, error)
	GetFunc        func(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]decimal.Decimal),
		ops:      make(map[string]bool),
	}
}

func balanceKey(accountID string, token domain.TokenType) string {
	return accountID + "/" + string(token)
}

// Seed sets a balance directly.
func (m *MockBalanceRepository) Seed(accountID string, token domain.TokenType, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey(accountID, token)] = decimal.NewFromInt(amount)
}

// Amount returns the stored balance, zero if absent.
func (m *MockBalanceRepository) Amount(accountID string, token domain.TokenType) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[balanceKey(accountID, token)]
}

func (m *MockBalanceRepository) Adjust(ctx context.Context, tx usecase.Transaction, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if m.AdjustFunc != nil {
		return m.AdjustFunc(ctx, tx, accountID, token, delta, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey(accountID, token)
	next := m.balances[key].Add(delta)
	if next.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientFunds
	}
	m.balances[key] = next
	onRollback(tx, func() { m.revert(key, delta) })
	return next, nil
}

func (m *MockBalanceRepository) revert(key string, delta decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key] = m.balances[key].Sub(delta)
}

func (m *MockBalanceRepository) AdjustOnce(ctx context.Context, tx usecase.Transaction, opKey, accountID string, token domain.TokenType, delta decimal.Decimal, at time.Time) (decimal.Decimal, bool, error) {
	if m.AdjustOnceFunc != nil {
		return m.AdjustOnceFunc(ctx, tx, opKey, accountID, token, delta, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := balanceKey(accountID, token)
	if m.ops[opKey] {
		return m.balances[key], false, nil
	}
	m.ops[opKey] = true
	m.balances[key] = m.balances[key].Add(delta)
	onRollback(tx, func() {
		m.revert(key, delta)
		m.mu.Lock()
		delete(m.ops, opKey)
		m.mu.Unlock()
	})
	return m.balances[key], true, nil
}

// Applied reports whether a keyed operation was recorded.
func (m *MockBalanceRepository) Applied(opKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ops[opKey]
}

func (m *MockBalanceRepository) Get(ctx context.Context, accountID string, token domain.TokenType) (*domain.Balance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, accountID, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.Balance{
		AccountID: accountID,
		TokenType: token,
		Amount:    m.balances[balanceKey(accountID, token)],
	}, nil
}

func (m *MockBalanceRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var balances []*domain.Balance
	for _, token := range domain.TokenTypes() {
		if amount, ok := m.balances[balanceKey(accountID, token)]; ok {
			balances = append(balances, &domain.Balance{AccountID: accountID, TokenType: token, Amount: amount})
		}
	}
	return balances, nil
}

// MockAuctionRepository is an in-memory AuctionRepository with conditional
// status transitions.
type MockAuctionRepository struct {
	mu       sync.RWMutex
	auctions map[string]*domain.Auction

	GetByIDFunc              func(ctx context.Context, id string) (*domain.Auction, error)
	MarkSettledFunc          func(ctx context.Context, tx usecase.Transaction, auction *domain.Auction) error
	MarkRefundsCompletedFunc func(ctx context.Context, tx usecase.Transaction, id string, at time.Time) (bool, error)
}

func NewMockAuctionRepository() *MockAuctionRepository {
	return &MockAuctionRepository{
		auctions: make(map[string]*domain.Auction),
	}
}

func (m *MockAuctionRepository) Create(ctx context.Context, tx usecase.Transaction, auction *domain.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.auctions[auction.ID]; ok {
		return fmt.Errorf("auction %s already exists", auction.ID)
	}
	stored := *auction
	m.auctions[auction.ID] = &stored
	return nil
}

func (m *MockAuctionRepository) GetByID(ctx context.Context, id string) (*domain.Auction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.auctions[id]; ok {
		out := *a
		return &out, nil
	}
	return nil, domain.ErrAuctionNotFound
}

func (m *MockAuctionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Auction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockAuctionRepository) List(ctx context.Context, status *domain.AuctionStatus, limit, offset int) ([]*domain.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var auctions []*domain.Auction
	for _, a := range m.auctions {
		if status != nil && a.Status != *status {
			continue
		}
		out := *a
		auctions = append(auctions, &out)
	}
	sort.Slice(auctions, func(i, j int) bool { return auctions[i].EndTime.Before(auctions[j].EndTime) })
	return page(auctions, limit, offset), nil
}

func (m *MockAuctionRepository) ListEndedOpen(ctx context.Context, now time.Time, limit int) ([]*domain.Auction, error) {
	open := domain.AuctionStatusOpen
	all, _ := m.List(ctx, &open, 0, 0)
	var ended []*domain.Auction
	for _, a := range all {
		if a.HasEnded(now) {
			ended = append(ended, a)
		}
	}
	return page(ended, limit, 0), nil
}

func (m *MockAuctionRepository) ListPendingRefunds(ctx context.Context, limit int) ([]*domain.Auction, error) {
	settled := domain.AuctionStatusSettled
	all, _ := m.List(ctx, &settled, 0, 0)
	var pending []*domain.Auction
	for _, a := range all {
		if a.RefundsCompletedAt == nil {
			pending = append(pending, a)
		}
	}
	return page(pending, limit, 0), nil
}

func (m *MockAuctionRepository) MarkSettled(ctx context.Context, tx usecase.Transaction, auction *domain.Auction) error {
	if m.MarkSettledFunc != nil {
		return m.MarkSettledFunc(ctx, tx, auction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.auctions[auction.ID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if stored.Status != domain.AuctionStatusOpen {
		return domain.ErrAlreadySettled
	}
	updated := *auction
	updated.Status = domain.AuctionStatusSettled
	m.auctions[auction.ID] = &updated
	return nil
}

func (m *MockAuctionRepository) MarkCancelled(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.auctions[id]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if stored.Status != domain.AuctionStatusOpen {
		return domain.ErrAlreadySettled
	}
	stored.Status = domain.AuctionStatusCancelled
	stored.UpdatedAt = at
	return nil
}

func (m *MockAuctionRepository) MarkRefundsCompleted(ctx context.Context, tx usecase.Transaction, id string, at time.Time) (bool, error) {
	if m.MarkRefundsCompletedFunc != nil {
		return m.MarkRefundsCompletedFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.auctions[id]
	if !ok || stored.Status != domain.AuctionStatusSettled || stored.RefundsCompletedAt != nil {
		return false, nil
	}
	stored.RefundsCompletedAt = &at
	onRollback(tx, func() {
		m.mu.Lock()
		stored.RefundsCompletedAt = nil
		m.mu.Unlock()
	})
	return true, nil
}

// MockBidRepository is an in-memory BidRepository enforcing one bid per
// (auction, account).
type MockBidRepository struct {
	mu     sync.RWMutex
	bids   map[int64]*domain.Bid
	nextID int64

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, bid *domain.Bid) error
	MarkRefundedFunc func(ctx context.Context, tx usecase.Transaction, bidID int64, at time.Time) error
}

func NewMockBidRepository() *MockBidRepository {
	return &MockBidRepository{
		bids: make(map[int64]*domain.Bid),
	}
}

func (m *MockBidRepository) Create(ctx context.Context, tx usecase.Transaction, bid *domain.Bid) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, bid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bids {
		if b.AuctionID == bid.AuctionID && b.AccountID == bid.AccountID {
			return domain.ErrDuplicateBid
		}
	}
	m.nextID++
	bid.ID = m.nextID
	stored := *bid
	m.bids[bid.ID] = &stored
	id := bid.ID
	onRollback(tx, func() {
		m.mu.Lock()
		delete(m.bids, id)
		m.mu.Unlock()
	})
	return nil
}

// Len returns the number of stored bids.
func (m *MockBidRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bids)
}

func (m *MockBidRepository) GetByAuctionAndAccount(ctx context.Context, auctionID, accountID string) (*domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bids {
		if b.AuctionID == auctionID && b.AccountID == accountID {
			out := *b
			return &out, nil
		}
	}
	return nil, domain.ErrBidNotFound
}

func (m *MockBidRepository) ListByAuction(ctx context.Context, tx usecase.Transaction, auctionID string) ([]*domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bids []*domain.Bid
	for _, b := range m.bids {
		if b.AuctionID == auctionID {
			out := *b
			bids = append(bids, &out)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID < bids[j].ID })
	return bids, nil
}

func (m *MockBidRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bids []*domain.Bid
	for _, b := range m.bids {
		if b.AccountID == accountID {
			out := *b
			bids = append(bids, &out)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID > bids[j].ID })
	return page(bids, limit, offset), nil
}

func (m *MockBidRepository) CountByAuction(ctx context.Context, auctionID string) (int, error) {
	bids, _ := m.ListByAuction(ctx, nil, auctionID)
	return len(bids), nil
}

func (m *MockBidRepository) MarkWinning(ctx context.Context, tx usecase.Transaction, bidID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[bidID]
	if !ok {
		return domain.ErrBidNotFound
	}
	b.IsWinning = true
	return nil
}

func (m *MockBidRepository) MarkRefunded(ctx context.Context, tx usecase.Transaction, bidID int64, at time.Time) error {
	if m.MarkRefundedFunc != nil {
		return m.MarkRefundedFunc(ctx, tx, bidID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[bidID]
	if !ok {
		return domain.ErrBidNotFound
	}
	if b.RefundedAt == nil {
		b.RefundedAt = &at
	}
	return nil
}

// MockOutboxRepository records outbox events in memory.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	onRollback(tx, func() { m.remove(event.ID) })
	return nil
}

func (m *MockOutboxRepository) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return
		}
	}
}

// EventTypes returns recorded event types in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.EventType)
	}
	return types
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
	}
	return page(events, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	return page(events, limit, offset), nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction. Writes made
// through the in-memory repositories are undone by Rollback until Commit is
// called. Commit marks them durable even when CommitFunc fails, which models
// a commit whose acknowledgement was lost.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu   sync.Mutex
	done bool
	undo []func()
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	m.mu.Lock()
	m.done = true
	m.undo = nil
	m.mu.Unlock()

	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	undo := m.undo
	if m.done {
		undo = nil
	}
	m.done = true
	m.undo = nil
	m.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}

	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) onRollback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.done {
		m.undo = append(m.undo, fn)
	}
}

// onRollback registers fn on tx when it is a MockTransaction. Writes made
// with a nil tx are autocommitted.
func onRollback(tx usecase.Transaction, fn func()) {
	if mt, ok := tx.(*MockTransaction); ok {
		mt.onRollback(fn)
	}
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockClock is a settable Clock.
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockSessionStore is a mock implementation of SessionStore.
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Identity
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]*domain.Identity)}
}

func (m *MockSessionStore) Put(sessionID string, id *domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = id
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.sessions[sessionID]; ok {
		return id, nil
	}
	return nil, domain.ErrUnauthorized
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
