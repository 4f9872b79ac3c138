package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL (usable con pool o tx).
// La tabla ledger_entries es append-only; no hay UPDATE ni DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste una entrada del libro. La restricción única sobre message_id
// convierte una reentrega que esquivó el registro de idempotencia en
// ErrDuplicateMessage en vez de una doble contabilización.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	itemKey := (*string)(nil)
	if e.ItemKey != "" {
		itemKey = &e.ItemKey
	}
	query := `
		INSERT INTO ledger_entries (id, item_key, category, delta, resulting_qty, amount, intent, message_id, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, itemKey, e.Category, e.Delta, e.ResultingQty, e.Amount, string(e.Intent), e.MessageID, e.AppliedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMessage
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// ListRecent devuelve las últimas entradas, más reciente primero.
func (r *LedgerRepo) ListRecent(ctx context.Context, limit int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, item_key, category, delta, resulting_qty, amount, intent, message_id, applied_at
		FROM ledger_entries ORDER BY applied_at DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Summarize agrega las entradas de [from, to): totales por intención más el detalle.
func (r *LedgerRepo) Summarize(ctx context.Context, from, to time.Time) (*repository.DailySummary, error) {
	query := `
		SELECT id, item_key, category, delta, resulting_qty, amount, intent, message_id, applied_at
		FROM ledger_entries
		WHERE applied_at >= $1 AND applied_at < $2
		ORDER BY applied_at ASC`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize entries: %w", err)
	}
	defer rows.Close()

	summary := &repository.DailySummary{
		Date:         from,
		SalesTotal:   decimal.Zero,
		RestockTotal: decimal.Zero,
		ExpenseTotal: decimal.Zero,
	}
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		summary.Entries = append(summary.Entries, e)
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
	return summary, rows.Err()
}

func scanEntry(scan func(dest ...any) error) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var itemKey *string
	var intent string
	if err := scan(&e.ID, &itemKey, &e.Category, &e.Delta, &e.ResultingQty, &e.Amount, &intent, &e.MessageID, &e.AppliedAt); err != nil {
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	if itemKey != nil {
		e.ItemKey = *itemKey
	}
	e.Intent = entity.Intent(intent)
	return &e, nil
}
