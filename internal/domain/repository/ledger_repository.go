package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DailySummary agregado del libro para un día (reporte diario).
type DailySummary struct {
	Date         time.Time
	SalesCount   int64
	SalesTotal   decimal.Decimal
	RestockCount int64
	RestockTotal decimal.Decimal
	ExpenseCount int64
	ExpenseTotal decimal.Decimal
	Entries      []*entity.LedgerEntry
}

// LedgerRepository acceso al libro append-only.
type LedgerRepository interface {
	// Create persiste una entrada. El message id lleva restricción de unicidad
	// como respaldo de la idempotencia.
	Create(ctx context.Context, e *entity.LedgerEntry) error
	// ListRecent devuelve las últimas entradas (historial para el contexto del oráculo y la API).
	ListRecent(ctx context.Context, limit int) ([]*entity.LedgerEntry, error)
	// Summarize agrega las entradas de un rango [from, to).
	Summarize(ctx context.Context, from, to time.Time) (*DailySummary, error)
}
