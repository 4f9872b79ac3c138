package ledger

import (
	"time"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// EvaluateAlert decide si la mutación recién aplicada debe disparar una
// notificación de stock bajo. Es edge-triggered: dispara únicamente cuando la
// cantidad cruza de >= umbral a < umbral en esta mutación, no en cada venta
// posterior mientras el stock siga bajo. previousQty la suministra el
// Reconciler (cantidad inmediatamente antes de la mutación).
func EvaluateAlert(previousQty int64, item *entity.InventoryItem, now time.Time) *entity.AlertEvent {
	if item == nil {
		return nil
	}
	if previousQty >= item.LowStockThreshold && item.Quantity < item.LowStockThreshold {
		return &entity.AlertEvent{
			ItemKey:   item.Key,
			ItemName:  item.Name,
			Quantity:  item.Quantity,
			Threshold: item.LowStockThreshold,
			At:        now,
		}
	}
	return nil
}
