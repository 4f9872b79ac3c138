package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemDTO representación de un item del inventario para la API de lectura.
type ItemDTO struct {
	Key               string    `json:"key"`
	Name              string    `json:"name"`
	Quantity          int64     `json:"quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LedgerEntryDTO entrada del libro para la API de lectura.
type LedgerEntryDTO struct {
	ID           string          `json:"id"`
	ItemKey      string          `json:"item_key,omitempty"`
	Category     string          `json:"category,omitempty"`
	Delta        int64           `json:"delta"`
	ResultingQty int64           `json:"resulting_qty"`
	Amount       decimal.Decimal `json:"amount"`
	Intent       string          `json:"intent"`
	MessageID    string          `json:"message_id"`
	AppliedAt    time.Time       `json:"applied_at"`
}
