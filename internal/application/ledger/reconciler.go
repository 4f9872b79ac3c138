package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
	"github.com/jhoicas/tendero-bot/pkg/logger"
)

// TxRunner ejecuta un callback con repositorios atados a una misma transacción:
// la mutación del item y la entrada del libro se confirman como unidad, o
// ninguna de las dos.
type TxRunner interface {
	Run(ctx context.Context, fn func(items repository.ItemRepository, entries repository.LedgerRepository) error) error
}

// ApplyResult resultado de una mutación aceptada.
type ApplyResult struct {
	Entry       *entity.LedgerEntry
	Item        *entity.InventoryItem // snapshot post-mutación (nil en gastos)
	PreviousQty int64                 // cantidad inmediatamente antes de la mutación
	Created     bool                  // el item se creó en esta reposición
}

// Reconciler valida la transacción draft contra el inventario y la aplica de
// forma atómica. La reconciliación se serializa por clave de item (keyedMutex
// en proceso más bloqueo de fila en el almacén), de modo que dos "vendi 1"
// concurrentes sobre una unidad no puedan leer ambos la misma cantidad
// pre-mutación. Claves distintas avanzan en paralelo.
type Reconciler struct {
	txRunner         TxRunner
	locks            *keyedMutex
	defaultThreshold int64
	log              *logger.Logger
}

// NewReconciler construye el reconciliador. defaultThreshold es el umbral de
// stock bajo que reciben los items creados por primera reposición.
func NewReconciler(txRunner TxRunner, defaultThreshold int64, log *logger.Logger) *Reconciler {
	return &Reconciler{
		txRunner:         txRunner,
		locks:            newKeyedMutex(),
		defaultThreshold: defaultThreshold,
		log:              log,
	}
}

// Apply aplica el draft. Reglas:
//   - Reposición de item desconocido lo crea (create-on-first-restock).
//   - Venta de item desconocido devuelve ErrUnknownItem, sin cambio de estado.
//   - Cantidad prospectiva negativa devuelve ErrInsufficientStock, sin cambio de estado.
//   - Mutación aceptada produce exactamente una LedgerEntry, en la misma transacción.
func (r *Reconciler) Apply(ctx context.Context, draft *entity.DraftTransaction, u *entity.Utterance) (*ApplyResult, error) {
	if draft.Intent == entity.IntentExpense {
		return r.applyExpense(ctx, draft, u)
	}

	key := draft.ItemKey
	if key == "" {
		key = canonical(draft.ItemName)
	}
	if key == "" {
		return nil, domain.ErrUnknownItem
	}

	unlock := r.locks.Lock(key)
	defer unlock()

	now := time.Now()
	var result *ApplyResult

	err := r.txRunner.Run(ctx, func(items repository.ItemRepository, entries repository.LedgerRepository) error {
		item, err := items.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}

		created := false
		if item == nil {
			if draft.Intent == entity.IntentSale {
				return domain.ErrUnknownItem
			}
			item = &entity.InventoryItem{
				Key:               key,
				Name:              draft.ItemName,
				Quantity:          0,
				LowStockThreshold: r.defaultThreshold,
			}
			created = true
		}

		previous := item.Quantity
		prospective := previous + draft.Quantity
		if prospective < 0 {
			return domain.ErrInsufficientStock
		}

		item.Quantity = prospective
		item.UpdatedAt = now
		if draft.Quantity > 0 && prospective >= item.LowStockThreshold {
			// Reposición por encima del umbral: rearmar el recordatorio del barrido.
			item.Alerted = false
		}
		if err := items.Upsert(ctx, item); err != nil {
			return err
		}

		entry := &entity.LedgerEntry{
			ID:           uuid.New().String(),
			ItemKey:      key,
			Delta:        draft.Quantity,
			ResultingQty: prospective,
			Amount:       draft.Amount,
			Intent:       draft.Intent,
			MessageID:    u.MessageID,
			AppliedAt:    now,
		}
		if err := entries.Create(ctx, entry); err != nil {
			return err
		}

		snapshot := *item
		result = &ApplyResult{Entry: entry, Item: &snapshot, PreviousQty: previous, Created: created}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err)
	}

	r.log.Info().
		Str("item", key).
		Int64("delta", draft.Quantity).
		Int64("resulting_qty", result.Item.Quantity).
		Str("message_id", u.MessageID).
		Msg("mutación aplicada")

	return result, nil
}

// applyExpense registra un gasto: solo entrada del libro, sin inventario.
func (r *Reconciler) applyExpense(ctx context.Context, draft *entity.DraftTransaction, u *entity.Utterance) (*ApplyResult, error) {
	now := time.Now()
	entry := &entity.LedgerEntry{
		ID:        uuid.New().String(),
		Category:  draft.Category,
		Amount:    draft.Amount,
		Intent:    entity.IntentExpense,
		MessageID: u.MessageID,
		AppliedAt: now,
	}

	err := r.txRunner.Run(ctx, func(_ repository.ItemRepository, entries repository.LedgerRepository) error {
		return entries.Create(ctx, entry)
	})
	if err != nil {
		return nil, asDomainError(err)
	}

	r.log.Info().
		Str("category", draft.Category).
		Str("amount", draft.Amount.String()).
		Str("message_id", u.MessageID).
		Msg("gasto registrado")

	return &ApplyResult{Entry: entry}, nil
}

// QuantityOf lee la cantidad actual de un item bajo su lock de clave, para que
// una consulta nunca reporte una cantidad a mitad de mutación.
func (r *Reconciler) QuantityOf(ctx context.Context, items repository.ItemRepository, key string) (*entity.InventoryItem, error) {
	unlock := r.locks.Lock(key)
	defer unlock()

	item, err := items.GetByKey(ctx, key)
	if err != nil {
		return nil, asDomainError(err)
	}
	return item, nil
}

// asDomainError deja pasar los errores de negocio y clasifica el resto como
// indisponibilidad del almacén (fatal solo para este mensaje; el transporte
// reintenta por reentrega).
func asDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownItem),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrDuplicateMessage):
		return err
	default:
		return errors.Join(domain.ErrStoreUnavailable, err)
	}
}
