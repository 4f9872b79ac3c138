package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/tendero-bot/internal/application/ledger"
	"github.com/jhoicas/tendero-bot/internal/application/pipeline"
	"github.com/jhoicas/tendero-bot/internal/domain/repository"
	"github.com/jhoicas/tendero-bot/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Pipeline        *pipeline.Pipeline
	Items           repository.ItemRepository
	Entries         repository.LedgerRepository
	Reports         *ledger.ReportUseCase
	Metrics         *metrics.Metrics
	TwilioAuthToken string
	PublicURL       string
}

// Router registra las rutas del servicio.
func Router(app *fiber.App, deps RouterDeps) {
	// Webhook de WhatsApp (firmado por Twilio)
	webhook := app.Group("/webhook", TwilioSignatureMiddleware(deps.TwilioAuthToken, deps.PublicURL+"/webhook/whatsapp"))
	webhookHandler := NewWebhookHandler(deps.Pipeline)
	webhook.Post("/whatsapp", webhookHandler.Receive)

	// API de lectura para el dashboard externo
	api := app.Group("/api")

	items := api.Group("/items")
	inventoryHandler := NewInventoryHandler(deps.Items)
	items.Get("/", inventoryHandler.List)
	items.Get("/low-stock", inventoryHandler.LowStock)

	ledgerHandler := NewLedgerHandler(deps.Entries)
	api.Get("/ledger", ledgerHandler.Recent)

	reportHandler := NewReportHandler(deps.Reports)
	api.Get("/reports/daily", reportHandler.Daily)

	// Operación
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
}
