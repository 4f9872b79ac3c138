package entity

import "time"

// InventoryItem es un producto del inventario de la tienda.
// Quantity nunca es negativa: toda mutación que la dejaría bajo cero se rechaza,
// no se recorta. La mutación pasa únicamente por el Reconciler.
type InventoryItem struct {
	Key               string // clave canónica (nombre normalizado, ej. "maggi")
	Name              string // nombre para mostrar, tal como lo escribió el tendero
	Quantity          int64
	LowStockThreshold int64
	Alerted           bool // true si ya se envió el recordatorio del barrido de stock bajo
	UpdatedAt         time.Time
}

// BelowThreshold indica si la cantidad actual está por debajo del umbral de stock bajo.
func (i *InventoryItem) BelowThreshold() bool {
	return i.Quantity < i.LowStockThreshold
}
