package pipeline_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de infraestructura para el test de extremo a extremo: inventario y
// libro en memoria, registro de idempotencia en memoria y notificador espía.
// ──────────────────────────────────────────────────────────────────────────────

type memBackend struct {
	mu      sync.Mutex
	items   map[string]*entity.InventoryItem
	entries []*entity.LedgerEntry
}

func newMemBackend() *memBackend {
	return &memBackend{items: make(map[string]*entity.InventoryItem)}
}

func (b *memBackend) put(item *entity.InventoryItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := *item
	b.items[item.Key] = &cp
}

func (b *memBackend) quantity(key string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if it, ok := b.items[key]; ok {
		return it.Quantity
	}
	return -1
}

func (b *memBackend) entryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// memBackend implementa a la vez ItemRepository, LedgerRepository y TxRunner:
// en memoria cada operación ya es atómica bajo el mutex.
var (
	_ repository.ItemRepository   = (*memBackend)(nil)
	_ repository.LedgerRepository = (*memBackend)(nil)
)

func (b *memBackend) Run(ctx context.Context, fn func(items repository.ItemRepository, entries repository.LedgerRepository) error) error {
	return fn(b, b)
}

func (b *memBackend) GetByKey(_ context.Context, key string) (*entity.InventoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if it, ok := b.items[key]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (b *memBackend) GetForUpdate(ctx context.Context, key string) (*entity.InventoryItem, error) {
	return b.GetByKey(ctx, key)
}

func (b *memBackend) Upsert(_ context.Context, item *entity.InventoryItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := *item
	b.items[item.Key] = &cp
	return nil
}

func (b *memBackend) List(_ context.Context) ([]*entity.InventoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*entity.InventoryItem
	for _, it := range b.items {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *memBackend) ListNames(_ context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make(map[string]string, len(b.items))
	for k, it := range b.items {
		names[k] = it.Name
	}
	return names, nil
}

func (b *memBackend) ListLowStock(_ context.Context) ([]*entity.InventoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*entity.InventoryItem
	for _, it := range b.items {
		if it.BelowThreshold() {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (b *memBackend) SetAlerted(_ context.Context, key string, alerted bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if it, ok := b.items[key]; ok {
		it.Alerted = alerted
	}
	return nil
}

func (b *memBackend) Create(_ context.Context, e *entity.LedgerEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.entries {
		if existing.MessageID == e.MessageID {
			return domain.ErrDuplicateMessage
		}
	}
	cp := *e
	b.entries = append(b.entries, &cp)
	return nil
}

func (b *memBackend) ListRecent(_ context.Context, limit int) ([]*entity.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*entity.LedgerEntry
	for i := len(b.entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *b.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (b *memBackend) Summarize(_ context.Context, from, to time.Time) (*repository.DailySummary, error) {
	return &repository.DailySummary{Date: from}, nil
}

// memIdempotency registro de idempotencia en memoria.
type memIdempotency struct {
	mu      sync.Mutex
	seen    map[string]bool
	replies map[string]string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{seen: make(map[string]bool), replies: make(map[string]string)}
}

func (m *memIdempotency) Register(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func (m *memIdempotency) SaveReply(_ context.Context, id, reply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[id] = reply
	return nil
}

func (m *memIdempotency) GetReply(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replies[id], nil
}

func (m *memIdempotency) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
	delete(m.replies, id)
	return nil
}

// spyNotifier guarda las alertas enviadas.
type spyNotifier struct {
	mu     sync.Mutex
	alerts []entity.AlertEvent
}

func (n *spyNotifier) SendAlert(_ context.Context, alert entity.AlertEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *spyNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}
