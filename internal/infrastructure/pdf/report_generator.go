// Package pdf genera el reporte diario del libro en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + Fecha del reporte                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Ventas / Entradas / Gastos (conteo y total)        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Hora | Movimiento | Producto/Categoría | Cant | $    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appledger "github.com/jhoicas/tendero-bot/internal/application/ledger"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

var _ appledger.ReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ledger.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	shopName string
}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator(shopName string) *MarotoReportGenerator {
	return &MarotoReportGenerator{shopName: shopName}
}

// DailyReport genera el PDF del resumen diario y devuelve sus bytes.
func (g *MarotoReportGenerator) DailyReport(summary *repository.DailySummary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte diario", true).
		WithAuthor(g.shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, e := range summary.Entries {
		m.AddRows(entryRow(e))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReportGenerator) headerRow(summary *repository.DailySummary) core.Row {
	fecha := summary.Date.Format("02/01/2006")
	return row.New(14).Add(
		col.New(7).Add(
			text.New(g.shopName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Reporte diario del libro", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fecha, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 4,
			}),
		),
	)
}

// summaryRow: totales del día por tipo de movimiento.
func summaryRow(summary *repository.DailySummary) core.Row {
	cell := func(label string, count int64, total string) []core.Component {
		return []core.Component{
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%d movimientos", count), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New("$"+total, props.Text{Style: fontstyle.Bold, Size: 10, Top: 11}),
		}
	}
	return row.New(18).Add(
		col.New(4).Add(cell("VENTAS", summary.SalesCount, summary.SalesTotal.StringFixed(2))...),
		col.New(4).Add(cell("ENTRADAS", summary.RestockCount, summary.RestockTotal.StringFixed(2))...),
		col.New(4).Add(cell("GASTOS", summary.ExpenseCount, summary.ExpenseTotal.StringFixed(2))...),
	)
}

func tableHeaderRow() core.Row {
	header := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary})
	}
	return row.New(6).Add(
		col.New(2).Add(header("Hora", align.Left)),
		col.New(2).Add(header("Movimiento", align.Left)),
		col.New(4).Add(header("Producto / Categoría", align.Left)),
		col.New(2).Add(header("Cantidad", align.Right)),
		col.New(2).Add(header("Monto", align.Right)),
	)
}

func entryRow(e *entity.LedgerEntry) core.Row {
	label := e.ItemKey
	qty := fmt.Sprintf("%+d", e.Delta)
	if e.Intent == entity.IntentExpense {
		label = e.Category
		qty = "-"
	}
	return row.New(5).Add(
		col.New(2).Add(text.New(e.AppliedAt.Format("15:04"), props.Text{Size: 8})),
		col.New(2).Add(text.New(movementLabel(e.Intent), props.Text{Size: 8})),
		col.New(4).Add(text.New(label, props.Text{Size: 8})),
		col.New(2).Add(text.New(qty, props.Text{Size: 8, Align: align.Right})),
		col.New(2).Add(text.New("$"+e.Amount.StringFixed(2), props.Text{Size: 8, Align: align.Right})),
	)
}

func movementLabel(intent entity.Intent) string {
	switch intent {
	case entity.IntentSale:
		return "Venta"
	case entity.IntentRestock:
		return "Entrada"
	case entity.IntentExpense:
		return "Gasto"
	default:
		return string(intent)
	}
}
