package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry es un registro append-only del libro: toda mutación aceptada
// (venta, reposición o gasto) produce exactamente una entrada. Nunca se
// modifica después de creada; forma la pista de auditoría.
//
// Para gastos ItemKey queda vacío y Category lleva la categoría en texto libre;
// Delta y ResultingQty son cero.
type LedgerEntry struct {
	ID           string
	ItemKey      string
	Category     string          // solo gastos
	Delta        int64           // cantidad con signo: positivo entrada, negativo salida
	ResultingQty int64           // cantidad resultante del item tras aplicar Delta
	Amount       decimal.Decimal // monto monetario (sin moneda)
	Intent       Intent
	MessageID    string // referencia al utterance de origen; único por entrada
	AppliedAt    time.Time
}
