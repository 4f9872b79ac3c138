package pipeline_test

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/pkg/logger"
	"github.com/jhoicas/tendero-bot/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test compartidos por el paquete
// ──────────────────────────────────────────────────────────────────────────────

// stubOracle NLUService de prueba: devuelve siempre el mismo resultado (o error)
// y cuenta las llamadas para verificar la economía de consultas al oráculo.
type stubOracle struct {
	result *ports.NLUResult
	err    error
	calls  int
}

func (s *stubOracle) ClassifyAndExtract(_ context.Context, _ string, _ ports.NLUContext) (*ports.NLUResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// testLogger logger silencioso para los tests.
func testLogger() *logger.Logger {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func testMetrics() *metrics.Metrics {
	return metrics.New()
}
