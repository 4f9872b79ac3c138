package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyAdapter)(nil)

const (
	messageKeyPrefix = "msg:"
	replyKeyPrefix   = "reply:"

	// Los SID de Twilio no se reentregan después de unas horas; 24h de TTL
	// cubre con margen la ventana de reintentos del transporte.
	idempotencyTTL = 24 * time.Hour
)

// IdempotencyAdapter registro de mensajes procesados sobre Redis. SETNX marca
// el message id la primera vez; la respuesta compuesta se guarda aparte para
// devolverla tal cual en reentregas.
type IdempotencyAdapter struct {
	client *redis.Client
}

// NewIdempotencyAdapter construye el adaptador.
func NewIdempotencyAdapter(client *redis.Client) *IdempotencyAdapter {
	return &IdempotencyAdapter{client: client}
}

// Register intenta registrar el message id. true = primera vez.
func (a *IdempotencyAdapter) Register(ctx context.Context, messageID string) (bool, error) {
	ok, err := a.client.SetNX(ctx, messageKeyPrefix+messageID, 1, idempotencyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("registrar message id: %w", err)
	}
	return ok, nil
}

// SaveReply guarda la respuesta compuesta para reentregas.
func (a *IdempotencyAdapter) SaveReply(ctx context.Context, messageID, reply string) error {
	if err := a.client.Set(ctx, replyKeyPrefix+messageID, reply, idempotencyTTL).Err(); err != nil {
		return fmt.Errorf("guardar respuesta: %w", err)
	}
	return nil
}

// GetReply devuelve la respuesta guardada ("" si no hay).
func (a *IdempotencyAdapter) GetReply(ctx context.Context, messageID string) (string, error) {
	reply, err := a.client.Get(ctx, replyKeyPrefix+messageID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("leer respuesta: %w", err)
	}
	return reply, nil
}

// Release borra el registro de un mensaje cuyo procesamiento falló.
func (a *IdempotencyAdapter) Release(ctx context.Context, messageID string) error {
	if err := a.client.Del(ctx, messageKeyPrefix+messageID).Err(); err != nil {
		return fmt.Errorf("liberar message id: %w", err)
	}
	return nil
}
