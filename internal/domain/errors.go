package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada fallo del pipeline cae en exactamente una de estas categorías;
// ninguna de ellas deja el inventario mutado a medias.
var (
	// ErrMalformedInput entrada vacía o ilegible tras normalizar; se pide aclaración.
	ErrMalformedInput = errors.New("mensaje vacío o ilegible")

	// ErrLowConfidence la extracción quedó por debajo del umbral configurado;
	// nunca se aplica una mutación especulativa, se pide aclaración.
	ErrLowConfidence = errors.New("extracción con confianza insuficiente")

	// ErrUnknownItem venta de un producto que no existe en el inventario.
	ErrUnknownItem = errors.New("producto no registrado en el inventario")

	// ErrInsufficientStock la mutación dejaría la cantidad en negativo.
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrOracleUnavailable el servicio de NLU no está disponible; el pipeline
	// degrada a intención Unknown en lugar de fallar.
	ErrOracleUnavailable = errors.New("servicio de interpretación no disponible")

	// ErrOracleTimeout la llamada al NLU superó el timeout configurado.
	ErrOracleTimeout = errors.New("servicio de interpretación excedió el timeout")

	// ErrStoreUnavailable fallo de la capa de persistencia; fatal solo para este
	// mensaje (el transporte reintenta por su política de reentrega).
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")

	// ErrDuplicateMessage el message id ya fue procesado (entrega at-least-once).
	ErrDuplicateMessage = errors.New("mensaje ya procesado")
)
