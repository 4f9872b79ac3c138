package ports

import "context"

// IdempotencyStore registro de mensajes ya procesados (clave = message id del
// transporte). Protege contra la entrega at-least-once del canal: un mensaje
// reentregado no debe producir una segunda entrada en el libro.
type IdempotencyStore interface {
	// Register intenta registrar el message id. Devuelve true si es la primera
	// vez que se ve; false si ya fue procesado.
	Register(ctx context.Context, messageID string) (bool, error)
	// SaveReply guarda la respuesta compuesta para reentregas del mismo mensaje.
	SaveReply(ctx context.Context, messageID, reply string) error
	// GetReply devuelve la respuesta guardada ("" si no hay).
	GetReply(ctx context.Context, messageID string) (string, error)
	// Release borra el registro de un message id cuyo procesamiento falló,
	// para que la reentrega del transporte no se descarte como duplicado.
	Release(ctx context.Context, messageID string) error
}
