package pipeline

import (
	"errors"
	"fmt"

	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// El compositor de respuestas es una función pura: resultado terminal del
// pipeline → un mensaje legible para el tendero. Sin efectos secundarios.

// ComposeApplied confirma una mutación aceptada.
func ComposeApplied(entry *entity.LedgerEntry, item *entity.InventoryItem, created bool) string {
	switch entry.Intent {
	case entity.IntentSale:
		return fmt.Sprintf("Venta registrada: %d x %s. Quedan %d.", -entry.Delta, item.Name, item.Quantity)
	case entity.IntentRestock:
		if created {
			return fmt.Sprintf("Producto nuevo: %s con %d unidades.", item.Name, item.Quantity)
		}
		return fmt.Sprintf("Entrada registrada: %d x %s. Quedan %d.", entry.Delta, item.Name, item.Quantity)
	case entity.IntentExpense:
		return fmt.Sprintf("Gasto registrado: $%s (%s).", entry.Amount.String(), entry.Category)
	default:
		return "Movimiento registrado."
	}
}

// ComposeQuery responde una consulta de stock.
func ComposeQuery(item *entity.InventoryItem) string {
	if item == nil {
		return "No tengo ese producto registrado en el inventario."
	}
	if item.Quantity == 0 {
		return fmt.Sprintf("%s: agotado.", item.Name)
	}
	return fmt.Sprintf("%s: quedan %d.", item.Name, item.Quantity)
}

// ComposeClarification pide una aclaración sin aplicar nada.
func ComposeClarification(question string) string {
	if question == "" {
		question = "¿Me lo repites? Por ejemplo: \"vendi 2 maggi\" o \"gaste 20000 en domicilios\"."
	}
	return "No te entendí bien. " + question
}

// ComposeRejection explica un rechazo de regla de negocio; el estado no cambió.
func ComposeRejection(err error, draft *entity.DraftTransaction, current *entity.InventoryItem) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		if current != nil {
			return fmt.Sprintf("Stock insuficiente: de %s quedan %d. No registré la venta.", current.Name, current.Quantity)
		}
		return "Stock insuficiente. No registré la venta."
	case errors.Is(err, domain.ErrUnknownItem):
		name := "ese producto"
		if draft != nil && draft.ItemName != "" {
			name = fmt.Sprintf("%q", draft.ItemName)
		}
		return fmt.Sprintf("No conozco %s. Si llegó mercancía nueva dime por ejemplo \"compre 10 %s\".", name, draftName(draft))
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "No pude guardar el movimiento. Inténtalo de nuevo en un momento."
	default:
		return "No pude registrar el movimiento. Inténtalo de nuevo."
	}
}

func draftName(draft *entity.DraftTransaction) string {
	if draft == nil || draft.ItemName == "" {
		return "producto"
	}
	return draft.ItemName
}
