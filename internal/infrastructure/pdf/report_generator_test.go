package pdf_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
	"github.com/jhoicas/tendero-bot/internal/infrastructure/pdf"
)

func sampleSummary() *repository.DailySummary {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	return &repository.DailySummary{
		Date:         day,
		SalesCount:   2,
		SalesTotal:   decimal.NewFromInt(7000),
		RestockCount: 1,
		RestockTotal: decimal.NewFromInt(12000),
		ExpenseCount: 1,
		ExpenseTotal: decimal.NewFromInt(20000),
		Entries: []*entity.LedgerEntry{
			{ItemKey: "maggi", Delta: -2, ResultingQty: 8, Amount: decimal.NewFromInt(7000),
				Intent: entity.IntentSale, AppliedAt: day.Add(9 * time.Hour)},
			{ItemKey: "maggi", Delta: 10, ResultingQty: 18, Amount: decimal.NewFromInt(12000),
				Intent: entity.IntentRestock, AppliedAt: day.Add(11 * time.Hour)},
			{Category: "domicilios", Amount: decimal.NewFromInt(20000),
				Intent: entity.IntentExpense, AppliedAt: day.Add(16 * time.Hour)},
		},
	}
}

func TestDailyReport_GeneraPDF(t *testing.T) {
	gen := pdf.NewMarotoReportGenerator("Tienda Doña Marta")

	raw, err := gen.DailyReport(sampleSummary())

	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, "%PDF", string(raw[:4]), "el documento empieza con la firma PDF")
}

func TestDailyReport_DiaSinMovimientos(t *testing.T) {
	gen := pdf.NewMarotoReportGenerator("Tienda Doña Marta")
	summary := &repository.DailySummary{Date: time.Now()}

	raw, err := gen.DailyReport(summary)

	require.NoError(t, err)
	assert.NotEmpty(t, raw, "un día vacío produce el reporte con totales en cero")
}
