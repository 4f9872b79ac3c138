package ports

import (
	"context"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
)

// AlertNotifier puerto de salida del canal de notificaciones (WhatsApp vía
// Twilio, mock de tests). Best-effort: un fallo se registra en el log y jamás
// revierte la mutación del libro que disparó la alerta.
type AlertNotifier interface {
	SendAlert(ctx context.Context, alert entity.AlertEvent) error
}
