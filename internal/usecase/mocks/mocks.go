package mocks

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
)

// Store is an in-memory ledger with real transaction semantics: one
// transaction runs at a time, and Rollback restores the state captured at
// Begin. Repositories obtained from it share its data.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data storeData

	// BeginFunc and CommitFunc inject failures.
	BeginFunc  func(ctx context.Context) error
	CommitFunc func(ctx context.Context) error

	commits   int
	rollbacks int
}

type storeData struct {
	wallets  map[string]*domain.Wallet
	holdings map[string]*domain.Holding
	orders   map[string]*domain.Order
	fills    map[string]*domain.Fill // keyed by execution ID
	assets   map[string]*domain.Asset
	kyc      map[string]*domain.KycRecord
	audit    []*domain.AuditEntry
	outbox   []*domain.OutboxEvent
}

func NewStore() *Store {
	return &Store{data: storeData{
		wallets:  make(map[string]*domain.Wallet),
		holdings: make(map[string]*domain.Holding),
		orders:   make(map[string]*domain.Order),
		fills:    make(map[string]*domain.Fill),
		assets:   make(map[string]*domain.Asset),
		kyc:      make(map[string]*domain.KycRecord),
	}}
}

func (d storeData) clone() storeData {
	c := storeData{
		wallets:  make(map[string]*domain.Wallet, len(d.wallets)),
		holdings: make(map[string]*domain.Holding, len(d.holdings)),
		orders:   make(map[string]*domain.Order, len(d.orders)),
		fills:    make(map[string]*domain.Fill, len(d.fills)),
		assets:   d.assets,
		kyc:      make(map[string]*domain.KycRecord, len(d.kyc)),
		audit:    append([]*domain.AuditEntry(nil), d.audit...),
		outbox:   append([]*domain.OutboxEvent(nil), d.outbox...),
	}
	for k, v := range d.wallets {
		c.wallets[k] = v.Clone()
	}
	for k, v := range d.holdings {
		c.holdings[k] = v.Clone()
	}
	for k, v := range d.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range d.fills {
		f := *v
		c.fills[k] = &f
	}
	for k, v := range d.kyc {
		r := *v
		c.kyc[k] = &r
	}
	return c
}

// Begin starts a transaction, blocking while another one is open.
// Transactions never interleave here, so a use case that read a row
// without locking it would still pass. Row locking is asserted with
// MockWalletRepository and exercised against Postgres in the
// integration tests.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if s.BeginFunc != nil {
		if err := s.BeginFunc(ctx); err != nil {
			return nil, err
		}
	}
	s.txMu.Lock()
	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()
	return &StoreTx{store: s, snapshot: snapshot}, nil
}

// Commits reports how many transactions committed.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Rollbacks reports how many transactions were rolled back.
func (s *Store) Rollbacks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rollbacks
}

// StoreTx is a Store transaction.
type StoreTx struct {
	store    *Store
	snapshot storeData
	done     bool
}

func (t *StoreTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	if t.store.CommitFunc != nil {
		if err := t.store.CommitFunc(ctx); err != nil {
			return err
		}
	}
	t.done = true
	t.store.mu.Lock()
	t.store.commits++
	t.store.mu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

// Rollback restores the snapshot. It is a no-op after Commit.
func (t *StoreTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	t.store.data = t.snapshot
	t.store.rollbacks++
	t.store.mu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

// PutWallet seeds a wallet outside any transaction.
func (s *Store) PutWallet(w *domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.Version == 0 {
		w.Version = 1
	}
	s.data.wallets[w.ID] = w.Clone()
}

// PutHolding seeds a holding outside any transaction.
func (s *Store) PutHolding(h *domain.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.Version == 0 {
		h.Version = 1
	}
	s.data.holdings[h.ID] = h.Clone()
}

// PutAsset seeds an asset.
func (s *Store) PutAsset(a *domain.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.data.assets[a.ID] = &c
}

// PutKyc seeds a verification status with no timestamp, so any later
// notification supersedes it.
func (s *Store) PutKyc(userID string, status domain.KycStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.kyc[userID] = &domain.KycRecord{UserID: userID, Status: status}
}

// Wallet returns a copy of the stored wallet or nil.
func (s *Store) Wallet(id string) *domain.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.data.wallets[id]; ok {
		return w.Clone()
	}
	return nil
}

// HoldingOf returns a copy of the user's holding in assetID or nil.
func (s *Store) HoldingOf(userID, assetID string) *domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.data.holdings {
		if h.UserID == userID && h.AssetID == assetID {
			return h.Clone()
		}
	}
	return nil
}

// Order returns a copy of the stored order or nil.
func (s *Store) Order(id string) *domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.data.orders[id]; ok {
		return o.Clone()
	}
	return nil
}

// OrderCount returns the number of stored orders.
func (s *Store) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.orders)
}

// FillCount returns the number of stored fills.
func (s *Store) FillCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.fills)
}

// AuditEntries returns appended entries in order.
func (s *Store) AuditEntries() []*domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.AuditEntry(nil), s.data.audit...)
}

// AuditEntriesFor returns entries for one resource.
func (s *Store) AuditEntriesFor(resourceType, resourceID string) []*domain.AuditEntry {
	var out []*domain.AuditEntry
	for _, e := range s.AuditEntries() {
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out
}

// OutboxEvents returns created outbox events in order.
func (s *Store) OutboxEvents() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.data.outbox...)
}

func (s *Store) Wallets() *WalletRepo   { return &WalletRepo{s: s} }
func (s *Store) Holdings() *HoldingRepo { return &HoldingRepo{s: s} }
func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s: s} }
func (s *Store) Fills() *FillRepo       { return &FillRepo{s: s} }
func (s *Store) Assets() *AssetRepo     { return &AssetRepo{s: s} }
func (s *Store) Audit() *AuditRepo      { return &AuditRepo{s: s} }
func (s *Store) Kyc() *KycRepo          { return &KycRepo{s: s} }
func (s *Store) Outbox() *OutboxRepo    { return &OutboxRepo{s: s} }
func (s *Store) Ledger() *LedgerRepo    { return &LedgerRepo{s: s} }
func (s *Store) lockedRead() func()     { s.mu.RLock(); return s.mu.RUnlock }
func (s *Store) lockedWrite() func()    { s.mu.Lock(); return s.mu.Unlock }

// WalletRepo implements usecase.WalletRepository over a Store.
type WalletRepo struct {
	s *Store

	UpdateFunc func(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error
}

func (r *WalletRepo) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	defer r.s.lockedWrite()()
	for _, w := range r.s.data.wallets {
		if w.UserID == wallet.UserID && w.Currency == wallet.Currency {
			return domain.ErrConcurrentModification
		}
	}
	r.s.data.wallets[wallet.ID] = wallet.Clone()
	return nil
}

func (r *WalletRepo) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	defer r.s.lockedRead()()
	if w, ok := r.s.data.wallets[id]; ok {
		return w.Clone(), nil
	}
	return nil, domain.ErrWalletNotFound
}

func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *WalletRepo) GetByUserCurrencyForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) (*domain.Wallet, error) {
	defer r.s.lockedRead()()
	for _, w := range r.s.data.wallets {
		if w.UserID == userID && w.Currency == currency {
			return w.Clone(), nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (r *WalletRepo) Update(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, tx, wallet)
	}
	defer r.s.lockedWrite()()
	stored, ok := r.s.data.wallets[wallet.ID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	if stored.Version != wallet.Version {
		return domain.ErrConcurrentModification
	}
	wallet.Version++
	r.s.data.wallets[wallet.ID] = wallet.Clone()
	return nil
}

func (r *WalletRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	defer r.s.lockedRead()()
	var out []*domain.Wallet
	for _, w := range r.s.data.wallets {
		if w.UserID == userID {
			out = append(out, w.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

// HoldingRepo implements usecase.HoldingRepository over a Store.
type HoldingRepo struct {
	s *Store
}

func (r *HoldingRepo) Create(ctx context.Context, tx usecase.Transaction, holding *domain.Holding) error {
	defer r.s.lockedWrite()()
	for _, h := range r.s.data.holdings {
		if h.UserID == holding.UserID && h.AssetID == holding.AssetID {
			return domain.ErrConcurrentModification
		}
	}
	r.s.data.holdings[holding.ID] = holding.Clone()
	return nil
}

func (r *HoldingRepo) GetByID(ctx context.Context, id string) (*domain.Holding, error) {
	defer r.s.lockedRead()()
	if h, ok := r.s.data.holdings[id]; ok {
		return h.Clone(), nil
	}
	return nil, domain.ErrHoldingNotFound
}

func (r *HoldingRepo) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Holding, error) {
	return r.GetByID(ctx, id)
}

func (r *HoldingRepo) GetByUserAssetForUpdate(ctx context.Context, tx usecase.Transaction, userID, assetID string) (*domain.Holding, error) {
	defer r.s.lockedRead()()
	for _, h := range r.s.data.holdings {
		if h.UserID == userID && h.AssetID == assetID {
			return h.Clone(), nil
		}
	}
	return nil, domain.ErrHoldingNotFound
}

func (r *HoldingRepo) Update(ctx context.Context, tx usecase.Transaction, holding *domain.Holding) error {
	defer r.s.lockedWrite()()
	stored, ok := r.s.data.holdings[holding.ID]
	if !ok {
		return domain.ErrHoldingNotFound
	}
	if stored.Version != holding.Version {
		return domain.ErrConcurrentModification
	}
	holding.Version++
	r.s.data.holdings[holding.ID] = holding.Clone()
	return nil
}

func (r *HoldingRepo) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	defer r.s.lockedWrite()()
	if _, ok := r.s.data.holdings[id]; !ok {
		return domain.ErrHoldingNotFound
	}
	delete(r.s.data.holdings, id)
	return nil
}

func (r *HoldingRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error) {
	defer r.s.lockedRead()()
	var out []*domain.Holding
	for _, h := range r.s.data.holdings {
		if h.UserID == userID {
			out = append(out, h.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

// OrderRepo implements usecase.OrderRepository over a Store.
type OrderRepo struct {
	s *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, order *domain.Order) error
}

func (r *OrderRepo) Create(ctx context.Context, tx usecase.Transaction, order *domain.Order) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, order)
	}
	defer r.s.lockedWrite()()
	r.s.data.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	defer r.s.lockedRead()()
	if o, ok := r.s.data.orders[id]; ok {
		return o.Clone(), nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(ctx context.Context, tx usecase.Transaction, order *domain.Order) error {
	defer r.s.lockedWrite()()
	stored, ok := r.s.data.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return domain.ErrConcurrentModification
	}
	order.Version++
	r.s.data.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	defer r.s.lockedRead()()
	var out []*domain.Order
	for _, o := range r.s.data.orders {
		if matchesOrder(o, filter) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].PlacedAt.After(out[j].PlacedAt)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *OrderRepo) Count(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	defer r.s.lockedRead()()
	var n int64
	for _, o := range r.s.data.orders {
		if matchesOrder(o, filter) {
			n++
		}
	}
	return n, nil
}

func matchesOrder(o *domain.Order, filter domain.OrderFilter) bool {
	return (filter.UserID == "" || o.UserID == filter.UserID) &&
		(filter.Status == "" || o.Status == filter.Status) &&
		(filter.Side == "" || o.Side == filter.Side) &&
		(filter.AssetID == "" || o.AssetID == filter.AssetID)
}

func (r *OrderRepo) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	defer r.s.lockedRead()()
	var ids []string
	for _, o := range r.s.data.orders {
		live := o.Status == domain.OrderStatusOpen || o.Status == domain.OrderStatusPartiallyFilled
		if live && o.TimeInForce == domain.TimeInForceDay && o.ExpiresAt != nil && !o.ExpiresAt.After(cutoff) {
			ids = append(ids, o.ID)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// FillRepo implements usecase.FillRepository over a Store.
type FillRepo struct {
	s *Store
}

func (r *FillRepo) Create(ctx context.Context, tx usecase.Transaction, fill *domain.Fill) error {
	defer r.s.lockedWrite()()
	if _, ok := r.s.data.fills[fill.ExecutionID]; ok {
		return domain.ErrConcurrentModification
	}
	f := *fill
	r.s.data.fills[fill.ExecutionID] = &f
	return nil
}

func (r *FillRepo) GetByExecutionID(ctx context.Context, tx usecase.Transaction, executionID string) (*domain.Fill, error) {
	defer r.s.lockedRead()()
	if f, ok := r.s.data.fills[executionID]; ok {
		c := *f
		return &c, nil
	}
	return nil, domain.ErrFillNotFound
}

func (r *FillRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.Fill, error) {
	defer r.s.lockedRead()()
	var out []*domain.Fill
	for _, f := range r.s.data.fills {
		if f.OrderID == orderID {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExecutedAt.Before(out[j].ExecutedAt) })
	return out, nil
}

// AssetRepo implements usecase.AssetRepository over a Store.
type AssetRepo struct {
	s *Store
}

func (r *AssetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	r.s.PutAsset(asset)
	return nil
}

func (r *AssetRepo) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	defer r.s.lockedRead()()
	if a, ok := r.s.data.assets[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, domain.ErrAssetNotFound
}

func (r *AssetRepo) List(ctx context.Context) ([]*domain.Asset, error) {
	defer r.s.lockedRead()()
	out := make([]*domain.Asset, 0, len(r.s.data.assets))
	for _, a := range r.s.data.assets {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// AuditRepo implements usecase.AuditRepository over a Store.
type AuditRepo struct {
	s *Store
}

func (r *AuditRepo) Append(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	defer r.s.lockedWrite()()
	e := *entry
	r.s.data.audit = append(r.s.data.audit, &e)
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	defer r.s.lockedRead()()
	var out []*domain.AuditEntry
	for i := len(r.s.data.audit) - 1; i >= 0; i-- {
		e := r.s.data.audit[i]
		if filter.ResourceType != "" && e.ResourceType != filter.ResourceType {
			continue
		}
		if filter.ResourceID != "" && e.ResourceID != filter.ResourceID {
			continue
		}
		if filter.EventType != "" && string(e.EventType) != filter.EventType {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

// KycRepo implements usecase.KycRepository over a Store.
type KycRepo struct {
	s *Store
}

func (r *KycRepo) Get(ctx context.Context, userID string) (*domain.KycRecord, error) {
	defer r.s.lockedRead()()
	if rec, ok := r.s.data.kyc[userID]; ok {
		c := *rec
		return &c, nil
	}
	return nil, domain.ErrKycNotFound
}

func (r *KycRepo) Upsert(ctx context.Context, tx usecase.Transaction, record *domain.KycRecord) error {
	defer r.s.lockedWrite()()
	c := *record
	r.s.data.kyc[record.UserID] = &c
	return nil
}

// OutboxRepo implements usecase.OutboxRepository over a Store.
type OutboxRepo struct {
	s *Store
}

func (r *OutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	defer r.s.lockedWrite()()
	e := *event
	r.s.data.outbox = append(r.s.data.outbox, &e)
	return nil
}

func (r *OutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	defer r.s.lockedRead()()
	var out []*domain.OutboxEvent
	for _, e := range r.s.data.outbox {
		if !e.Published {
			c := *e
			out = append(out, &c)
		}
	}
	return paginate(out, limit, 0), nil
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	defer r.s.lockedWrite()()
	for _, e := range r.s.data.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (r *OutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	defer r.s.lockedWrite()()
	kept := r.s.data.outbox[:0]
	for _, e := range r.s.data.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.s.data.outbox = kept
	return nil
}

// LedgerRepo implements usecase.LedgerRepository over a Store.
type LedgerRepo struct {
	s *Store
}

func (r *LedgerRepo) WalletDrift(ctx context.Context) ([]usecase.ReservationDrift, error) {
	defer r.s.lockedRead()()
	expected := make(map[string]decimal.Decimal)
	for _, o := range r.s.data.orders {
		if o.Side == domain.OrderSideBuy && !o.Status.IsTerminal() {
			expected[o.WalletID] = expected[o.WalletID].Add(o.ReservedAmount)
		}
	}
	var drift []usecase.ReservationDrift
	for _, w := range r.s.data.wallets {
		if !w.Reserved.Equal(expected[w.ID]) || w.CheckInvariant() != nil {
			drift = append(drift, usecase.ReservationDrift{ResourceID: w.ID, Recorded: w.Reserved, Expected: expected[w.ID]})
		}
	}
	return drift, nil
}

func (r *LedgerRepo) HoldingDrift(ctx context.Context) ([]usecase.ReservationDrift, error) {
	defer r.s.lockedRead()()
	expected := make(map[string]decimal.Decimal)
	for _, o := range r.s.data.orders {
		if o.Side == domain.OrderSideSell && !o.Status.IsTerminal() {
			key := o.UserID + "/" + o.AssetID
			expected[key] = expected[key].Add(o.ReservedAmount)
		}
	}
	var drift []usecase.ReservationDrift
	for _, h := range r.s.data.holdings {
		want := expected[h.UserID+"/"+h.AssetID]
		if !h.ReservedQuantity.Equal(want) {
			drift = append(drift, usecase.ReservationDrift{ResourceID: h.ID, Recorded: h.ReservedQuantity, Expected: want})
		}
	}
	return drift, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// PriceTable is a fixed reference price source.
type PriceTable map[string]decimal.Decimal

func (p PriceTable) ReferencePrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	if price, ok := p[assetID]; ok {
		return price, nil
	}
	return decimal.Zero, domain.ErrPriceUnavailable
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
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
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
	return "mock-id-" + strconv.Itoa(m.counter)
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
