// seed puebla el inventario con items de demostración para probar el bot
// sin tener que registrar entradas una por una vía WhatsApp.
//
// Uso: go run ./cmd/seed
// Lee la configuración de la base de datos igual que cmd/api (env / .env).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/infrastructure/postgres"
	"github.com/jhoicas/tendero-bot/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewItemRepository(pool)
	threshold := cfg.Engine.LowStockThreshold

	demo := []struct {
		key, name string
		qty       int64
	}{
		{"maggi", "Maggi", 20},
		{"arroz 1kg", "Arroz 1kg", 15},
		{"aceite 1l", "Aceite 1L", 10},
		{"panela", "Panela", 30},
		{"leche 1l", "Leche 1L", 12},
		{"jabon rey", "Jabón Rey", 8},
		{"gaseosa 1.5l", "Gaseosa 1.5L", 18},
		{"huevos x30", "Huevos x30", 6},
	}

	for _, d := range demo {
		item := &entity.InventoryItem{
			Key:               d.key,
			Name:              d.name,
			Quantity:          d.qty,
			LowStockThreshold: threshold,
		}
		if err := repo.Upsert(ctx, item); err != nil {
			fmt.Fprintf(os.Stderr, "sembrar %q: %v\n", d.name, err)
			os.Exit(1)
		}
		fmt.Printf("ok  %-14s cantidad=%d umbral=%d\n", d.key, d.qty, threshold)
	}

	fmt.Printf("listo: %d items sembrados\n", len(demo))
}
