package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tendero-bot/internal/application/ledger"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

// stubGenerator ReportGenerator de prueba: captura el resumen recibido.
type stubGenerator struct {
	got *repository.DailySummary
}

func (g *stubGenerator) DailyReport(summary *repository.DailySummary) ([]byte, error) {
	g.got = summary
	return []byte("%PDF-falso"), nil
}

// El reporte diario agrega solo las entradas del día pedido (medianoche a
// medianoche, hora local).
func TestReportDaily_RangoDelDia(t *testing.T) {
	store := newMemStore()
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)

	entries := []*entity.LedgerEntry{
		{ID: "1", MessageID: "SM1", Intent: entity.IntentSale, ItemKey: "maggi", Delta: -2, AppliedAt: day.Add(9 * time.Hour)},
		{ID: "2", MessageID: "SM2", Intent: entity.IntentExpense, Category: "domicilios", AppliedAt: day.Add(16 * time.Hour)},
		{ID: "3", MessageID: "SM3", Intent: entity.IntentSale, ItemKey: "maggi", Delta: -1, AppliedAt: day.AddDate(0, 0, -1)},
		{ID: "4", MessageID: "SM4", Intent: entity.IntentSale, ItemKey: "maggi", Delta: -1, AppliedAt: day.AddDate(0, 0, 1)},
	}
	store.entries = entries

	gen := &stubGenerator{}
	uc := ledger.NewReportUseCase(&memLedgerRepo{tx: &memTx{store: store, entries: entries}}, gen)

	// La hora del argumento no importa: se trunca al día
	raw, err := uc.Daily(context.Background(), day.Add(14*time.Hour))

	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	require.NotNil(t, gen.got)
	assert.Len(t, gen.got.Entries, 2, "ayer y mañana quedan fuera del rango")
	assert.EqualValues(t, 1, gen.got.SalesCount)
	assert.EqualValues(t, 1, gen.got.ExpenseCount)
	assert.Equal(t, day, gen.got.Date)
}
