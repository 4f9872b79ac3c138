package pipeline

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/pkg/logger"
	"github.com/jhoicas/tendero-bot/pkg/metrics"
)

// intentRule regla determinista de clasificación. Se evalúan en orden y gana
// la primera que matchea; la consulta va antes que la venta porque "cuanto
// vendi hoy" menciona ambas familias de palabras.
type intentRule struct {
	re         *regexp.Regexp
	intent     entity.Intent
	confidence float64
}

// Los tenderos escriben en español, inglés o mezcla; las reglas cubren ambas
// familias de frases comunes. La normalización previa ya quitó acentos, así
// que "vendí" llega como "vendi".
var intentRules = []intentRule{
	{regexp.MustCompile(`\b(cuanto|cuantos|cuantas|queda|quedan|how much|how many|left|hay de)\b`), entity.IntentQuery, 0.9},
	{regexp.MustCompile(`\b(vendi|vendio|vendimos|venta de|sold|se vendieron)\b`), entity.IntentSale, 0.9},
	{regexp.MustCompile(`\b(compre|compro|compramos|llegaron|llego|recibi|surti|bought|restock|restocked|received)\b`), entity.IntentRestock, 0.85},
	{regexp.MustCompile(`\b(gaste|gasto de|gasto en|pague|pago de|spent|paid|expense)\b`), entity.IntentExpense, 0.85},
}

// IntentClassifier política híbrida: primero reglas deterministas de palabras
// clave; si ninguna matchea (o su confianza queda bajo el umbral configurado)
// se consulta el oráculo NLU con timeout. Si el oráculo falla o se vence el
// timeout, degrada a Unknown con confianza 0 en lugar de bloquear el pipeline.
// Para una misma entrada el resultado es idempotente.
type IntentClassifier struct {
	oracle    ports.NLUService
	threshold float64
	timeout   time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewIntentClassifier construye el clasificador.
func NewIntentClassifier(
	oracle ports.NLUService,
	threshold float64,
	timeout time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *IntentClassifier {
	return &IntentClassifier{
		oracle:    oracle,
		threshold: threshold,
		timeout:   timeout,
		log:       log,
		metrics:   m,
	}
}

// Classify devuelve la clasificación del utterance normalizado. Si tuvo que
// consultar el oráculo, devuelve también su resultado completo para que el
// extractor lo reutilice sin una segunda llamada.
func (c *IntentClassifier) Classify(
	ctx context.Context,
	normalized string,
	nluCtx ports.NLUContext,
) (entity.Classification, *ports.NLUResult) {
	for _, rule := range intentRules {
		if !rule.re.MatchString(normalized) {
			continue
		}
		if rule.confidence >= c.threshold {
			return entity.Classification{Intent: rule.intent, Confidence: rule.confidence, ByRule: true}, nil
		}
		// Regla débil: el oráculo decide, pero conservamos la regla como respaldo.
		if cls, res := c.consultOracle(ctx, normalized, nluCtx); cls.Intent != entity.IntentUnknown {
			return cls, res
		}
		return entity.Classification{Intent: rule.intent, Confidence: rule.confidence, ByRule: true}, nil
	}

	return c.consultOracle(ctx, normalized, nluCtx)
}

// consultOracle llama al NLU acotado por timeout. Timeout o indisponibilidad
// se tratan como resultado degradado (Unknown, confianza 0), nunca como fallo.
func (c *IntentClassifier) consultOracle(
	ctx context.Context,
	normalized string,
	nluCtx ports.NLUContext,
) (entity.Classification, *ports.NLUResult) {
	octx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.oracle.ClassifyAndExtract(octx, normalized, nluCtx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOracleTimeout) || errors.Is(err, context.DeadlineExceeded):
			c.metrics.OracleCalls.WithLabelValues("timeout").Inc()
			c.log.Warn().Err(err).Msg("oráculo NLU excedió el timeout; degradando a Unknown")
		default:
			c.metrics.OracleCalls.WithLabelValues("unavailable").Inc()
			c.log.Warn().Err(err).Msg("oráculo NLU no disponible; degradando a Unknown")
		}
		return entity.Classification{Intent: entity.IntentUnknown, Confidence: 0}, nil
	}

	c.metrics.OracleCalls.WithLabelValues("ok").Inc()
	cls := entity.Classification{Intent: res.Intent, Confidence: res.Confidence}
	if res.Confidence < c.threshold {
		// Oráculo inseguro: pedir aclaración en vez de adivinar.
		cls.Intent = entity.IntentUnknown
	}
	return cls, res
}
