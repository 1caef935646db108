// Package finstore implements the unified in-memory financial store: the
// single source of truth for one signed-in user's records, fed by remote
// data access and consumed by any number of subscribers.
//
// The store replaces its whole snapshot atomically on every change, so a
// reader always observes a consistent view and never a torn update. All
// store-mutating operations — each CRUD mutation and the whole five-category
// refresh — serialize on a single writer mutex; reads never block on writes.
// A mutation issued while a refresh is in flight therefore waits for the
// refresh to commit instead of racing it.
package finstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/client"
	"github.com/richflow/richflow/internal/finance"
	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/session"
)

// ErrSessionChanged reports that a mutation's server round-trip completed
// after the session was reset; its result was discarded rather than spliced
// into the new session's store.
var ErrSessionChanged = fmt.Errorf("session changed while request was in flight")

// Backend is the remote data access surface the store depends on.
// *client.Client satisfies it; tests substitute fakes.
type Backend interface {
	ListIncome(ctx context.Context) ([]models.IncomeItem, error)
	ListExpenses(ctx context.Context) ([]models.ExpenseItem, error)
	ListAssets(ctx context.Context) ([]models.AssetItem, error)
	ListLiabilities(ctx context.Context) ([]models.LiabilityItem, error)
	GetCashSavings(ctx context.Context) (models.CashSavings, error)

	AddIncome(ctx context.Context, in client.IncomeInput) (models.IncomeItem, error)
	UpdateIncome(ctx context.Context, id string, in client.IncomeInput) (models.IncomeItem, error)
	DeleteIncome(ctx context.Context, id string) error

	AddExpense(ctx context.Context, in client.RecordInput) (models.ExpenseItem, error)
	UpdateExpense(ctx context.Context, id string, in client.RecordInput) (models.ExpenseItem, error)
	DeleteExpense(ctx context.Context, id string) error

	AddAsset(ctx context.Context, in client.ValueInput) (models.AssetItem, error)
	UpdateAsset(ctx context.Context, id string, in client.ValueInput) (models.AssetItem, error)
	DeleteAsset(ctx context.Context, id string) error

	AddLiability(ctx context.Context, in client.ValueInput) (models.LiabilityItem, error)
	UpdateLiability(ctx context.Context, id string, in client.ValueInput) (models.LiabilityItem, error)
	DeleteLiability(ctx context.Context, id string) error

	SetCashSavings(ctx context.Context, amount decimal.Decimal) (models.CashSavings, error)
}

var _ Backend = (*client.Client)(nil)

// Snapshot is one immutable view of the store. Slices in a snapshot are
// never mutated in place; treat them as read-only.
type Snapshot struct {
	Income      []models.IncomeItem
	Expenses    []models.ExpenseItem
	Assets      []models.AssetItem
	Liabilities []models.LiabilityItem
	CashSavings decimal.Decimal

	// Loading is true while a refresh is in flight.
	Loading bool

	// Err is a non-fatal, dismissable message describing categories that
	// failed during the last refresh. Empty when everything loaded.
	Err string

	// Initialized is true once a refresh has completed, even partially.
	Initialized bool

	// Totals is the derived view of the snapshot, computed once at commit.
	Totals finance.Totals
}

// Store is the unified financial store. Create one per session scope with New.
type Store struct {
	backend Backend

	// writeMu serializes all store-mutating operations end to end,
	// including their network phase.
	writeMu sync.Mutex

	mu           sync.RWMutex
	snap         *Snapshot
	epoch        uint64
	listeners    map[int]func()
	nextListener int

	unsubscribe func()
}

// New creates a store over the given backend. If bus is non-nil the store
// subscribes to it and resets itself whenever a session change is announced.
func New(backend Backend, bus *session.Bus) *Store {
	s := &Store{
		backend:   backend,
		snap:      emptySnapshot(),
		listeners: make(map[int]func()),
	}
	if bus != nil {
		s.unsubscribe = bus.Subscribe(s.Reset)
	}
	return s
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Income:      []models.IncomeItem{},
		Expenses:    []models.ExpenseItem{},
		Assets:      []models.AssetItem{},
		Liabilities: []models.LiabilityItem{},
		Totals:      finance.Compute(nil, nil, nil, nil),
	}
}

// Close detaches the store from the session bus.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Snapshot returns the current state. It never blocks on in-flight writes.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.snap
}

// Totals returns the derived totals of the current snapshot.
func (s *Store) Totals() finance.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Totals
}

// Subscribe registers a listener invoked synchronously after every state
// change and returns a function that removes it. The first subscriber on an
// uninitialized store triggers a background refresh; later subscribers do
// not start duplicate fetches while one is in flight.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	needsRefresh := !s.snap.Initialized && !s.snap.Loading
	s.mu.Unlock()

	if needsRefresh {
		go func() {
			if err := s.Refresh(context.Background()); err != nil {
				slog.Warn("initial refresh failed", "error", err)
			}
		}()
	}

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Reset synchronously returns the store to its empty initial state and
// notifies listeners. A refresh or mutation still in flight when Reset runs
// belongs to the previous session; its result is discarded at commit time so
// the new session never sees the old user's figures.
func (s *Store) Reset() {
	s.mu.Lock()
	s.epoch++
	s.snap = emptySnapshot()
	s.mu.Unlock()
	s.notify()
}

// Refresh fetches all five categories in parallel and commits them as one
// atomic snapshot. A category that fails to load degrades to an empty
// collection and is reported through Snapshot().Err; the refresh itself
// still completes and marks the store initialized. Calling Refresh while one
// is already in flight is a no-op.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.snap.Loading {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch
	loading := *s.snap
	loading.Loading = true
	s.snap = &loading
	s.mu.Unlock()
	s.notify()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		wg          sync.WaitGroup
		income      []models.IncomeItem
		expenses    []models.ExpenseItem
		assets      []models.AssetItem
		liabilities []models.LiabilityItem
		cash        models.CashSavings
		failures    [5]string
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		var err error
		if income, err = s.backend.ListIncome(ctx); err != nil {
			slog.Warn("refresh: income fetch failed", "error", err)
			failures[0] = "failed to load income"
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if expenses, err = s.backend.ListExpenses(ctx); err != nil {
			slog.Warn("refresh: expenses fetch failed", "error", err)
			failures[1] = "failed to load expenses"
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if assets, err = s.backend.ListAssets(ctx); err != nil {
			slog.Warn("refresh: assets fetch failed", "error", err)
			failures[2] = "failed to load assets"
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if liabilities, err = s.backend.ListLiabilities(ctx); err != nil {
			slog.Warn("refresh: liabilities fetch failed", "error", err)
			failures[3] = "failed to load liabilities"
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if cash, err = s.backend.GetCashSavings(ctx); err != nil {
			slog.Warn("refresh: cash savings fetch failed", "error", err)
			failures[4] = "failed to load cash savings"
		}
	}()
	wg.Wait()

	var msgs []string
	for _, f := range failures {
		if f != "" {
			msgs = append(msgs, f)
		}
	}

	next := &Snapshot{
		Income:      orEmpty(income),
		Expenses:    orEmpty(expenses),
		Assets:      orEmpty(assets),
		Liabilities: orEmpty(liabilities),
		CashSavings: cash.Amount,
		Err:         strings.Join(msgs, "; "),
		Initialized: true,
	}
	next.Totals = finance.Compute(next.Income, next.Expenses, next.Assets, next.Liabilities)

	s.mu.Lock()
	if s.epoch != epoch {
		// Session changed mid-refresh; drop the stale result but clear the
		// loading flag the refresh set.
		fresh := *s.snap
		fresh.Loading = false
		s.snap = &fresh
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.snap = next
	s.mu.Unlock()
	s.notify()
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// notify invokes every listener outside the state lock.
func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// commit applies mutate to a copy of the current snapshot, recomputes the
// derived totals, swaps the snapshot in and notifies listeners. It refuses
// to apply results that raced a session reset.
func (s *Store) commit(epoch uint64, mutate func(next *Snapshot)) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionChanged
	}
	next := *s.snap
	mutate(&next)
	next.Totals = finance.Compute(next.Income, next.Expenses, next.Assets, next.Liabilities)
	s.snap = &next
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// resolveIncomeInput canonicalizes the income type and applies the quadrant
// rule: an explicit valid quadrant wins, anything else falls back to the
// type's default. Add and update share this path so the fallback is
// identical in both.
func resolveIncomeInput(in client.IncomeInput) client.IncomeInput {
	typ := models.ParseIncomeType(string(in.Type))
	in.Type = typ
	in.Quadrant = string(models.ResolveQuadrant(in.Quadrant, typ))
	return in
}

// AddIncome creates an income line on the server and splices the normalized
// result into the store. On failure the store is left untouched.
func (s *Store) AddIncome(ctx context.Context, in client.IncomeInput) (models.IncomeItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.AddIncome(ctx, resolveIncomeInput(in))
	if err != nil {
		return models.IncomeItem{}, fmt.Errorf("add income: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Income = append(slices.Clone(next.Income), item)
	}); err != nil {
		return models.IncomeItem{}, err
	}
	return item, nil
}

// UpdateIncome replaces an income line by ID.
func (s *Store) UpdateIncome(ctx context.Context, id string, in client.IncomeInput) (models.IncomeItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.UpdateIncome(ctx, id, resolveIncomeInput(in))
	if err != nil {
		return models.IncomeItem{}, fmt.Errorf("update income: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Income = replaceByID(next.Income, item, func(it models.IncomeItem) string { return it.ID })
	}); err != nil {
		return models.IncomeItem{}, err
	}
	return item, nil
}

// DeleteIncome removes an income line by ID.
func (s *Store) DeleteIncome(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	if err := s.backend.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return s.commit(epoch, func(next *Snapshot) {
		next.Income = removeByID(next.Income, id, func(it models.IncomeItem) string { return it.ID })
	})
}

// AddExpense creates an expense and splices it into the store.
func (s *Store) AddExpense(ctx context.Context, in client.RecordInput) (models.ExpenseItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.AddExpense(ctx, in)
	if err != nil {
		return models.ExpenseItem{}, fmt.Errorf("add expense: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Expenses = append(slices.Clone(next.Expenses), item)
	}); err != nil {
		return models.ExpenseItem{}, err
	}
	return item, nil
}

// UpdateExpense replaces an expense by ID.
func (s *Store) UpdateExpense(ctx context.Context, id string, in client.RecordInput) (models.ExpenseItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.UpdateExpense(ctx, id, in)
	if err != nil {
		return models.ExpenseItem{}, fmt.Errorf("update expense: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Expenses = replaceByID(next.Expenses, item, func(it models.ExpenseItem) string { return it.ID })
	}); err != nil {
		return models.ExpenseItem{}, err
	}
	return item, nil
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	if err := s.backend.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return s.commit(epoch, func(next *Snapshot) {
		next.Expenses = removeByID(next.Expenses, id, func(it models.ExpenseItem) string { return it.ID })
	})
}

// AddAsset creates an asset and splices it into the store.
func (s *Store) AddAsset(ctx context.Context, in client.ValueInput) (models.AssetItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.AddAsset(ctx, in)
	if err != nil {
		return models.AssetItem{}, fmt.Errorf("add asset: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Assets = append(slices.Clone(next.Assets), item)
	}); err != nil {
		return models.AssetItem{}, err
	}
	return item, nil
}

// UpdateAsset replaces an asset by ID.
func (s *Store) UpdateAsset(ctx context.Context, id string, in client.ValueInput) (models.AssetItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.UpdateAsset(ctx, id, in)
	if err != nil {
		return models.AssetItem{}, fmt.Errorf("update asset: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Assets = replaceByID(next.Assets, item, func(it models.AssetItem) string { return it.ID })
	}); err != nil {
		return models.AssetItem{}, err
	}
	return item, nil
}

// DeleteAsset removes an asset by ID.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	if err := s.backend.DeleteAsset(ctx, id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return s.commit(epoch, func(next *Snapshot) {
		next.Assets = removeByID(next.Assets, id, func(it models.AssetItem) string { return it.ID })
	})
}

// AddLiability creates a liability and splices it into the store.
func (s *Store) AddLiability(ctx context.Context, in client.ValueInput) (models.LiabilityItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.AddLiability(ctx, in)
	if err != nil {
		return models.LiabilityItem{}, fmt.Errorf("add liability: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Liabilities = append(slices.Clone(next.Liabilities), item)
	}); err != nil {
		return models.LiabilityItem{}, err
	}
	return item, nil
}

// UpdateLiability replaces a liability by ID.
func (s *Store) UpdateLiability(ctx context.Context, id string, in client.ValueInput) (models.LiabilityItem, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	item, err := s.backend.UpdateLiability(ctx, id, in)
	if err != nil {
		return models.LiabilityItem{}, fmt.Errorf("update liability: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.Liabilities = replaceByID(next.Liabilities, item, func(it models.LiabilityItem) string { return it.ID })
	}); err != nil {
		return models.LiabilityItem{}, err
	}
	return item, nil
}

// DeleteLiability removes a liability by ID.
func (s *Store) DeleteLiability(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	if err := s.backend.DeleteLiability(ctx, id); err != nil {
		return fmt.Errorf("delete liability: %w", err)
	}
	return s.commit(epoch, func(next *Snapshot) {
		next.Liabilities = removeByID(next.Liabilities, id, func(it models.LiabilityItem) string { return it.ID })
	})
}

// SetCashSavings replaces the cash-savings scalar.
func (s *Store) SetCashSavings(ctx context.Context, amount decimal.Decimal) (models.CashSavings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	epoch := s.currentEpoch()
	cs, err := s.backend.SetCashSavings(ctx, amount)
	if err != nil {
		return models.CashSavings{}, fmt.Errorf("set cash savings: %w", err)
	}
	if err := s.commit(epoch, func(next *Snapshot) {
		next.CashSavings = cs.Amount
	}); err != nil {
		return models.CashSavings{}, err
	}
	return cs, nil
}

// replaceByID returns a new slice with the item of matching ID replaced.
// An item the store has not seen yet is appended, keeping the store
// consistent with what the server last confirmed.
func replaceByID[T any](items []T, item T, id func(T) string) []T {
	out := slices.Clone(items)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

// removeByID returns a new slice without the item of matching ID.
func removeByID[T any](items []T, target string, id func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if id(it) != target {
			out = append(out, it)
		}
	}
	return out
}
