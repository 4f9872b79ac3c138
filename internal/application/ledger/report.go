package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

// ReportGenerator puerto de salida del generador de reportes (PDF).
type ReportGenerator interface {
	DailyReport(summary *repository.DailySummary) ([]byte, error)
}

// ReportUseCase arma el resumen diario del libro (ventas, entradas y gastos)
// y lo materializa como PDF para el colaborador externo de dashboard.
type ReportUseCase struct {
	entries   repository.LedgerRepository
	generator ReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(entries repository.LedgerRepository, generator ReportGenerator) *ReportUseCase {
	return &ReportUseCase{entries: entries, generator: generator}
}

// Daily genera el reporte del día indicado (medianoche a medianoche, hora local).
func (uc *ReportUseCase) Daily(ctx context.Context, day time.Time) ([]byte, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	summary, err := uc.entries.Summarize(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("resumen diario: %w", err)
	}
	summary.Date = from

	pdf, err := uc.generator.DailyReport(summary)
	if err != nil {
		return nil, fmt.Errorf("generar PDF: %w", err)
	}
	return pdf, nil
}
