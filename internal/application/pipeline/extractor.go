package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/pkg/logger"
)

// ExtractionFailure extracción fallida o incierta. Nunca llega al Reconciler:
// el pipeline la convierte en una pregunta de aclaración al tendero.
type ExtractionFailure struct {
	Reason   error  // domain.ErrLowConfidence o domain.ErrMalformedInput
	Question string // pregunta sugerida para el tendero
}

func (e *ExtractionFailure) Error() string { return e.Reason.Error() }
func (e *ExtractionFailure) Unwrap() error { return e.Reason }

// stopWords palabras de relleno que no forman parte del nombre del producto.
var stopWords = map[string]bool{
	"de": true, "del": true, "la": true, "el": true, "los": true, "las": true,
	"a": true, "en": true, "por": true, "para": true, "con": true, "y": true,
	"hoy": true, "ayer": true, "of": true, "the": true, "at": true, "for": true,
	"in": true, "today": true, "x": true, "unidades": true, "unidad": true,
	"units": true, "paquetes": true, "paquete": true, "cajas": true, "caja": true,
}

// intentWords palabras clave de intención, excluidas del nombre del producto.
var intentWords = map[string]bool{
	"vendi": true, "vendio": true, "vendimos": true, "venta": true, "sold": true,
	"compre": true, "compro": true, "compramos": true, "llego": true,
	"llegaron": true, "recibi": true, "surti": true, "bought": true,
	"restock": true, "restocked": true, "received": true,
	"gaste": true, "gasto": true, "pague": true, "pago": true, "spent": true,
	"paid": true, "expense": true, "cuanto": true, "cuantos": true,
	"cuantas": true, "queda": true, "quedan": true, "hay": true, "how": true,
	"much": true, "many": true, "left": true, "se": true, "vendieron": true,
}

// priceRe precio unitario: "a 3500", "en $2.5", "por 1200", "at 3500".
var priceRe = regexp.MustCompile(`\b(?:a|en|por|at|for)\s+\$?(\d+(?:\.\d+)?)\b`)

// numberRe token numérico aislado (la normalización ya plegó "dos" → "2").
var numberRe = regexp.MustCompile(`^\$?\d+(?:\.\d+)?$`)

// fuzzyMaxDistance distancia Levenshtein máxima aceptada en el matching difuso
// de nombres de producto ("magi" → "maggi").
const fuzzyMaxDistance = 2

// EntityExtractor produce una DraftTransaction a partir del utterance
// normalizado y su intención. Resuelve el item contra el inventario conocido
// (exacto → difuso → oráculo) y aplica la política de confianza: por debajo
// del umbral configurado el resultado es ExtractionFailure, no un draft.
type EntityExtractor struct {
	oracle    ports.NLUService
	threshold float64
	timeout   time.Duration
	log       *logger.Logger
}

// NewEntityExtractor construye el extractor.
func NewEntityExtractor(oracle ports.NLUService, threshold float64, timeout time.Duration, log *logger.Logger) *EntityExtractor {
	return &EntityExtractor{oracle: oracle, threshold: threshold, timeout: timeout, log: log}
}

// Extract arma el draft para la intención dada. oracleRes es la interpretación
// del oráculo si el clasificador ya lo consultó (se reutiliza en vez de llamar
// dos veces); puede ser nil.
func (x *EntityExtractor) Extract(
	ctx context.Context,
	normalized string,
	cls entity.Classification,
	oracleRes *ports.NLUResult,
	nluCtx ports.NLUContext,
) (*entity.DraftTransaction, error) {
	switch cls.Intent {
	case entity.IntentSale, entity.IntentRestock:
		return x.extractMovement(ctx, normalized, cls, oracleRes, nluCtx)
	case entity.IntentExpense:
		return x.extractExpense(normalized, cls, oracleRes)
	default:
		return nil, &ExtractionFailure{
			Reason:   domain.ErrLowConfidence,
			Question: "No entendí si fue una venta, una compra o un gasto.",
		}
	}
}

// extractMovement ventas y reposiciones: cantidad + item (+ precio opcional).
func (x *EntityExtractor) extractMovement(
	ctx context.Context,
	normalized string,
	cls entity.Classification,
	oracleRes *ports.NLUResult,
	nluCtx ports.NLUContext,
) (*entity.DraftTransaction, error) {
	confidence := cls.Confidence

	price, priceText := extractPrice(normalized)
	qty, qtyFound := extractQuantity(normalized, priceText)

	defaulted := false
	if !qtyFound {
		if oracleRes != nil && oracleRes.Quantity > 0 {
			qty = oracleRes.Quantity
		} else {
			// Default explícito: sin token de cantidad se asume 1 unidad.
			// Documentado como decisión de producto, no adivinanza silenciosa;
			// el descuento de confianza empuja los casos dudosos a aclaración.
			qty = 1
			defaulted = true
			confidence -= 0.15
		}
	}

	itemName, itemKey := x.resolveItem(ctx, normalized, priceText, oracleRes, nluCtx)
	if itemName == "" {
		return nil, &ExtractionFailure{
			Reason:   domain.ErrLowConfidence,
			Question: "¿De qué producto me hablas?",
		}
	}
	if itemKey == "" {
		// Referencia sin match en inventario: válida en reposición (item nuevo),
		// dudosa en venta. El descuento deja que el umbral decida.
		if cls.Intent == entity.IntentSale {
			confidence -= 0.1
		}
	}

	if confidence < x.threshold {
		return nil, &ExtractionFailure{
			Reason:   domain.ErrLowConfidence,
			Question: fmt.Sprintf("¿Me confirmas? Entendí %s de %q.", movementPhrase(cls.Intent, qty), itemName),
		}
	}

	delta := qty
	if cls.Intent == entity.IntentSale {
		delta = -qty
	}

	amount := decimal.Zero
	var unitPrice *decimal.Decimal
	if price != nil {
		unitPrice = price
		amount = price.Mul(decimal.NewFromInt(qty))
	} else if oracleRes != nil {
		amount = oracleRes.Amount
	}

	return &entity.DraftTransaction{
		ItemName:          itemName,
		ItemKey:           itemKey,
		Quantity:          delta,
		UnitPrice:         unitPrice,
		Amount:            amount,
		Intent:            cls.Intent,
		Confidence:        confidence,
		QuantityDefaulted: defaulted,
	}, nil
}

// extractExpense gastos: monto obligatorio + categoría en texto libre.
func (x *EntityExtractor) extractExpense(
	normalized string,
	cls entity.Classification,
	oracleRes *ports.NLUResult,
) (*entity.DraftTransaction, error) {
	amount, amountText, found := extractAmount(normalized)
	if !found && oracleRes != nil && oracleRes.Amount.IsPositive() {
		amount = oracleRes.Amount
		found = true
	}
	if !found {
		return nil, &ExtractionFailure{
			Reason:   domain.ErrLowConfidence,
			Question: "¿De cuánto fue el gasto?",
		}
	}

	category := strings.TrimSpace(strings.Join(contentWords(normalized, amountText), " "))
	if category == "" && oracleRes != nil {
		category = oracleRes.Category
	}
	if category == "" {
		category = "general"
	}

	if cls.Confidence < x.threshold {
		return nil, &ExtractionFailure{
			Reason:   domain.ErrLowConfidence,
			Question: fmt.Sprintf("¿Registro un gasto de $%s en %s?", amount.String(), category),
		}
	}

	return &entity.DraftTransaction{
		Category:   category,
		Amount:     amount,
		Intent:     entity.IntentExpense,
		Confidence: cls.Confidence,
	}, nil
}

// ResolveQueryItem resuelve el producto de una consulta de stock.
func (x *EntityExtractor) ResolveQueryItem(
	ctx context.Context,
	normalized string,
	oracleRes *ports.NLUResult,
	nluCtx ports.NLUContext,
) (name, key string) {
	return x.resolveItem(ctx, normalized, "", oracleRes, nluCtx)
}

// resolveItem referencia de producto → (nombre, clave canónica). Orden:
// match exacto con clave conocida, match difuso por Levenshtein, y por último
// desambiguación asistida por el oráculo. key queda "" si no hay match.
func (x *EntityExtractor) resolveItem(
	ctx context.Context,
	normalized, priceText string,
	oracleRes *ports.NLUResult,
	nluCtx ports.NLUContext,
) (name, key string) {
	candidate := strings.Join(contentWords(normalized, priceText), " ")

	if candidate != "" {
		if k, ok := matchKnown(candidate, nluCtx.KnownItems); ok {
			return nluCtx.KnownItems[k], k
		}
	}

	// Oráculo: si el clasificador ya lo consultó se reutiliza su item;
	// si no y hay candidato sin match, una llamada dedicada desambigua.
	if oracleRes == nil && candidate != "" && len(nluCtx.KnownItems) > 0 {
		octx, cancel := context.WithTimeout(ctx, x.timeout)
		defer cancel()
		if res, err := x.oracle.ClassifyAndExtract(octx, normalized, nluCtx); err == nil {
			oracleRes = res
		} else {
			x.log.Debug().Err(err).Msg("desambiguación por oráculo no disponible")
		}
	}
	if oracleRes != nil && oracleRes.ItemName != "" {
		oc := CanonicalKey(oracleRes.ItemName)
		if k, ok := matchKnown(oc, nluCtx.KnownItems); ok {
			return nluCtx.KnownItems[k], k
		}
		if candidate == "" {
			return oracleRes.ItemName, ""
		}
	}

	return candidate, ""
}

// matchKnown candidato canónico → clave de inventario. Exacto, luego difuso.
func matchKnown(candidate string, known map[string]string) (string, bool) {
	if _, ok := known[candidate]; ok {
		return candidate, true
	}

	best := ""
	bestDist := fuzzyMaxDistance + 1
	for k := range known {
		d := levenshtein.ComputeDistance(candidate, k)
		// El límite escala hacia abajo en claves cortas: "te" a distancia 2
		// matchearía cualquier cosa.
		limit := fuzzyMaxDistance
		if len(k) <= 4 {
			limit = 1
		}
		if d <= limit && d < bestDist {
			best, bestDist = k, d
		}
	}
	if best != "" {
		return best, true
	}
	return "", false
}

// extractQuantity primer token numérico entero que no sea el precio.
func extractQuantity(normalized, priceText string) (int64, bool) {
	for _, f := range strings.Fields(normalized) {
		if f == priceText || strings.HasPrefix(f, "$") {
			continue
		}
		if numberRe.MatchString(f) && !strings.Contains(f, ".") {
			n, err := strconv.ParseInt(f, 10, 64)
			if err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

// extractPrice precio unitario de "a 3500" / "en $2.5". Devuelve también el
// token textual para excluirlo de cantidad y nombre.
func extractPrice(normalized string) (*decimal.Decimal, string) {
	m := priceRe.FindStringSubmatch(normalized)
	if m == nil {
		return nil, ""
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil, ""
	}
	return &d, m[1]
}

// extractAmount monto de un gasto: primer número del mensaje.
func extractAmount(normalized string) (decimal.Decimal, string, bool) {
	for _, f := range strings.Fields(normalized) {
		raw := strings.TrimPrefix(f, "$")
		if numberRe.MatchString(f) {
			d, err := decimal.NewFromString(raw)
			if err == nil && d.IsPositive() {
				return d, raw, true
			}
		}
	}
	return decimal.Zero, "", false
}

// contentWords palabras del mensaje que no son intención, relleno ni números.
func contentWords(normalized string, exclude ...string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if e != "" {
			excluded[e] = true
		}
	}
	var out []string
	for _, f := range strings.Fields(normalized) {
		raw := strings.TrimPrefix(f, "$")
		if intentWords[f] || stopWords[f] || numberRe.MatchString(f) || excluded[raw] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// movementPhrase frase corta para preguntas de aclaración.
func movementPhrase(intent entity.Intent, qty int64) string {
	if intent == entity.IntentRestock {
		return fmt.Sprintf("una compra de %d", qty)
	}
	return fmt.Sprintf("una venta de %d", qty)
}
