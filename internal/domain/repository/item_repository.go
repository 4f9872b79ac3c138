package repository

import (
	"context"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// ItemRepository acceso al inventario. Las implementaciones sobre PostgreSQL
// son usables con pool o con tx (Querier).
type ItemRepository interface {
	// GetByKey devuelve el item o nil si no existe.
	GetByKey(ctx context.Context, key string) (*entity.InventoryItem, error)
	// GetForUpdate devuelve el item bloqueando la fila (SELECT FOR UPDATE) o nil si no existe.
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(ctx context.Context, key string) (*entity.InventoryItem, error)
	// Upsert inserta o actualiza el item.
	Upsert(ctx context.Context, item *entity.InventoryItem) error
	// List devuelve todos los items ordenados por nombre.
	List(ctx context.Context) ([]*entity.InventoryItem, error)
	// ListNames devuelve (clave canónica, nombre) de todos los items, para el
	// matching difuso del extractor y el contexto del oráculo.
	ListNames(ctx context.Context) (map[string]string, error)
	// ListLowStock devuelve los items con cantidad bajo su umbral.
	ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error)
	// SetAlerted marca o limpia la bandera de recordatorio enviado.
	SetAlerted(ctx context.Context, key string, alerted bool) error
}
