package ports

import (
	"context"

	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// NLUContext contexto que acompaña cada llamada al oráculo: el inventario
// conocido (clave canónica → nombre) y el historial reciente, para que el
// modelo resuelva referencias ambiguas ("vendí dos de esas sopas").
type NLUContext struct {
	KnownItems    map[string]string
	RecentHistory []string
}

// NLUResult interpretación estructurada devuelta por el oráculo.
type NLUResult struct {
	Intent     entity.Intent
	ItemName   string
	Category   string
	Quantity   int64
	Amount     decimal.Decimal
	Confidence float64 // [0,1]
}

// NLUService puerto de salida hacia el oráculo de lenguaje natural (Gemini,
// mock de tests, etc.). La aplicación solo conoce este contrato, no el proveedor.
// Las implementaciones deben respetar la cancelación del contexto: el caller
// impone el timeout y trata su vencimiento como resultado degradado, nunca
// como caída del pipeline.
type NLUService interface {
	ClassifyAndExtract(ctx context.Context, text string, nluCtx NLUContext) (*NLUResult, error)
}
