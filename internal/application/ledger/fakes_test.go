package ledger_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
	"github.com/jhoicas/tendero-bot/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con transacciones copy-on-write: el callback del TxRunner
// trabaja sobre una copia y solo un retorno sin error la confirma, igual que
// el commit de PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu      sync.Mutex
	items   map[string]*entity.InventoryItem
	entries []*entity.LedgerEntry

	failEntryCreate error // si no es nil, Create de entradas falla con este error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*entity.InventoryItem)}
}

func (s *memStore) put(item *entity.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.Key] = &cp
}

func (s *memStore) get(key string) *entity.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[key]; ok {
		cp := *it
		return &cp
	}
	return nil
}

func (s *memStore) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// memTxRunner implementación en memoria de ledger.TxRunner.
type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(items repository.ItemRepository, entries repository.LedgerRepository) error) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copia de trabajo de la transacción
	tx := &memTx{
		store:   s,
		items:   make(map[string]*entity.InventoryItem, len(s.items)),
		entries: append([]*entity.LedgerEntry(nil), s.entries...),
	}
	for k, v := range s.items {
		cp := *v
		tx.items[k] = &cp
	}

	if err := fn(&memItemRepo{tx: tx}, &memLedgerRepo{tx: tx}); err != nil {
		return err // rollback: la copia se descarta
	}

	s.items = tx.items
	s.entries = tx.entries
	return nil
}

type memTx struct {
	store   *memStore
	items   map[string]*entity.InventoryItem
	entries []*entity.LedgerEntry
}

// memItemRepo ItemRepository sobre la copia transaccional.
type memItemRepo struct {
	tx *memTx
}

func (r *memItemRepo) GetByKey(_ context.Context, key string) (*entity.InventoryItem, error) {
	if it, ok := r.tx.items[key]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (r *memItemRepo) GetForUpdate(ctx context.Context, key string) (*entity.InventoryItem, error) {
	return r.GetByKey(ctx, key)
}

func (r *memItemRepo) Upsert(_ context.Context, item *entity.InventoryItem) error {
	cp := *item
	r.tx.items[item.Key] = &cp
	return nil
}

func (r *memItemRepo) List(_ context.Context) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, it := range r.tx.items {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memItemRepo) ListNames(_ context.Context) (map[string]string, error) {
	names := make(map[string]string, len(r.tx.items))
	for k, it := range r.tx.items {
		names[k] = it.Name
	}
	return names, nil
}

func (r *memItemRepo) ListLowStock(_ context.Context) ([]*entity.InventoryItem, error) {
	var out []*entity.InventoryItem
	for _, it := range r.tx.items {
		if it.BelowThreshold() {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *memItemRepo) SetAlerted(_ context.Context, key string, alerted bool) error {
	if it, ok := r.tx.items[key]; ok {
		it.Alerted = alerted
	}
	return nil
}

// memLedgerRepo LedgerRepository sobre la copia transaccional. Reproduce la
// restricción de unicidad sobre message_id.
type memLedgerRepo struct {
	tx *memTx
}

func (r *memLedgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	if err := r.tx.store.failEntryCreate; err != nil {
		return err
	}
	for _, existing := range r.tx.entries {
		if existing.MessageID == e.MessageID {
			return domain.ErrDuplicateMessage
		}
	}
	cp := *e
	r.tx.entries = append(r.tx.entries, &cp)
	return nil
}

func (r *memLedgerRepo) ListRecent(_ context.Context, limit int) ([]*entity.LedgerEntry, error) {
	n := len(r.tx.entries)
	var out []*entity.LedgerEntry
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.tx.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memLedgerRepo) Summarize(_ context.Context, from, to time.Time) (*repository.DailySummary, error) {
	summary := &repository.DailySummary{Date: from}
	for _, e := range r.tx.entries {
		if e.AppliedAt.Before(from) || !e.AppliedAt.Before(to) {
			continue
		}
		cp := *e
		summary.Entries = append(summary.Entries, &cp)
		switch e.Intent {
		case entity.IntentSale:
			summary.SalesCount++
			summary.SalesTotal = summary.SalesTotal.Add(e.Amount)
		case entity.IntentRestock:
			summary.RestockCount++
			summary.RestockTotal = summary.RestockTotal.Add(e.Amount)
		case entity.IntentExpense:
			summary.ExpenseCount++
			summary.ExpenseTotal = summary.ExpenseTotal.Add(e.Amount)
		}
	}
	return summary, nil
}

// testLogger logger silencioso para los tests.
func testLogger() *logger.Logger {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	return logger.New(logger.Config{Env: "production", Level: "error"})
}
