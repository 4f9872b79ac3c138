package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `key, name, quantity, low_stock_threshold, alerted, updated_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	err := row.Scan(&i.Key, &i.Name, &i.Quantity, &i.LowStockThreshold, &i.Alerted, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

// GetByKey obtiene un item por clave canónica; nil si no existe.
func (r *ItemRepo) GetByKey(ctx context.Context, key string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE key = $1`
	item, err := scanItem(r.q.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetForUpdate obtiene el item bloqueando la fila (SELECT FOR UPDATE); nil si no existe.
func (r *ItemRepo) GetForUpdate(ctx context.Context, key string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE key = $1 FOR UPDATE`
	item, err := scanItem(r.q.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return item, nil
}

// Upsert inserta o actualiza el item por clave canónica.
func (r *ItemRepo) Upsert(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO items (key, name, quantity, low_stock_threshold, alerted, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (key)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              low_stock_threshold = EXCLUDED.low_stock_threshold,
		              alerted = EXCLUDED.alerted,
		              updated_at = now()`
	_, err := r.q.Exec(ctx, query, item.Key, item.Name, item.Quantity, item.LowStockThreshold, item.Alerted)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// List devuelve todos los items ordenados por nombre.
func (r *ItemRepo) List(ctx context.Context) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		var i entity.InventoryItem
		if err := rows.Scan(&i.Key, &i.Name, &i.Quantity, &i.LowStockThreshold, &i.Alerted, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// ListNames devuelve clave canónica → nombre de todos los items.
func (r *ItemRepo) ListNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.q.Query(ctx, `SELECT key, name FROM items ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list item names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, fmt.Errorf("scan item name: %w", err)
		}
		names[key] = name
	}
	return names, rows.Err()
}

// ListLowStock devuelve los items con cantidad bajo su umbral.
func (r *ItemRepo) ListLowStock(ctx context.Context) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE quantity < low_stock_threshold ORDER BY key`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		var i entity.InventoryItem
		if err := rows.Scan(&i.Key, &i.Name, &i.Quantity, &i.LowStockThreshold, &i.Alerted, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// SetAlerted marca o limpia la bandera de recordatorio enviado.
func (r *ItemRepo) SetAlerted(ctx context.Context, key string, alerted bool) error {
	_, err := r.q.Exec(ctx, `UPDATE items SET alerted = $2 WHERE key = $1`, key, alerted)
	if err != nil {
		return fmt.Errorf("set alerted: %w", err)
	}
	return nil
}
