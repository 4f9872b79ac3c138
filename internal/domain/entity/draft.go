package entity

import "github.com/shopspring/decimal"

// DraftTransaction es la transacción extraída pero aún no validada contra el
// inventario. Existe solo durante un ciclo de procesamiento.
type DraftTransaction struct {
	ItemName   string // referencia en texto libre; el Reconciler la resuelve a clave canónica
	ItemKey    string // clave canónica si el extractor ya resolvió el item ("" si no)
	Category   string // solo gastos
	Quantity   int64  // con signo: positivo suma stock, negativo resta
	UnitPrice  *decimal.Decimal
	Amount     decimal.Decimal
	Intent     Intent
	Confidence float64 // confianza de la extracción [0,1]

	// QuantityDefaulted true cuando no había token de cantidad y se asumió 1
	// (default explícito y documentado, no una adivinanza silenciosa).
	QuantityDefaulted bool
}
