package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contadores Prometheus del motor. Se registran en un Registry propio
// para que los tests puedan construir instancias aisladas.
type Metrics struct {
	Registry *prometheus.Registry

	// MessagesTotal mensajes procesados, etiquetados por resultado terminal:
	// applied, query, clarification, rejected, duplicate, error.
	MessagesTotal *prometheus.CounterVec

	// OracleCalls llamadas al oráculo NLU por resultado: ok, timeout, unavailable.
	OracleCalls *prometheus.CounterVec

	// AlertsFired alertas de stock bajo disparadas (edge-triggered + barrido).
	AlertsFired prometheus.Counter

	// ProcessSeconds duración del ciclo completo de un mensaje.
	ProcessSeconds prometheus.Histogram
}

// New construye y registra las métricas.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tendero",
			Name:      "messages_total",
			Help:      "Mensajes procesados por resultado terminal.",
		}, []string{"outcome"}),
		OracleCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tendero",
			Name:      "oracle_calls_total",
			Help:      "Llamadas al oráculo NLU por resultado.",
		}, []string{"result"}),
		AlertsFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tendero",
			Name:      "alerts_fired_total",
			Help:      "Alertas de stock bajo enviadas.",
		}),
		ProcessSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tendero",
			Name:      "message_process_seconds",
			Help:      "Duración del procesamiento de un mensaje.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
