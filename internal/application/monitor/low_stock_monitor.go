package monitor

import (
	"context"
	"time"

	"github.com/jhoicas/tendero-bot/internal/application/ports"
	"github.com/jhoicas/tendero-bot/internal/domain/entity"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
	"github.com/jhoicas/tendero-bot/pkg/logger"
	"github.com/jhoicas/tendero-bot/pkg/metrics"
)

// LowStockMonitor barrido periódico del inventario que envía al dueño un
// recordatorio por cada item bajo su umbral. Manda a lo sumo un recordatorio
// por cruce: marca el item como alertado y el Reconciler limpia la marca
// cuando una reposición lo devuelve por encima del umbral.
//
// Complementa la alerta edge-triggered del pipeline: esa dispara en el momento
// del cruce, el barrido recuerda lo que sigue pendiente de reorden.
type LowStockMonitor struct {
	items    repository.ItemRepository
	notifier ports.AlertNotifier
	interval time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New construye el monitor. interval <= 0 desactiva el barrido.
func New(
	items repository.ItemRepository,
	notifier ports.AlertNotifier,
	interval time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *LowStockMonitor {
	return &LowStockMonitor{items: items, notifier: notifier, interval: interval, log: log, metrics: m}
}

// Run ejecuta el barrido hasta que el contexto se cancele. Pensado para
// correr en una goroutine propia desde main.
func (m *LowStockMonitor) Run(ctx context.Context) {
	if m.interval <= 0 {
		m.log.Info().Msg("barrido de stock bajo desactivado")
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Info().Dur("interval", m.interval).Msg("barrido de stock bajo iniciado")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("barrido de stock bajo detenido")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep una pasada del barrido. Exportado para poder probarlo sin el ticker.
func (m *LowStockMonitor) Sweep(ctx context.Context) {
	low, err := m.items.ListLowStock(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("barrido: no se pudo listar el stock bajo")
		return
	}

	now := time.Now()
	for _, item := range low {
		if item.Alerted {
			continue
		}
		alert := entity.AlertEvent{
			ItemKey:   item.Key,
			ItemName:  item.Name,
			Quantity:  item.Quantity,
			Threshold: item.LowStockThreshold,
			At:        now,
		}
		if err := m.notifier.SendAlert(ctx, alert); err != nil {
			// Best-effort: se reintenta en el siguiente barrido.
			m.log.Error().Err(err).Str("item", item.Key).Msg("barrido: no se pudo enviar el recordatorio")
			continue
		}
		m.metrics.AlertsFired.Inc()
		if err := m.items.SetAlerted(ctx, item.Key, true); err != nil {
			m.log.Error().Err(err).Str("item", item.Key).Msg("barrido: no se pudo marcar el item como alertado")
		}
	}
}
