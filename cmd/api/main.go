package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"

	appledger "github.com/jhoicas/tendero-bot/internal/application/ledger"
	"github.com/jhoicas/tendero-bot/internal/application/monitor"
	"github.com/jhoicas/tendero-bot/internal/application/pipeline"
	infraai "github.com/jhoicas/tendero-bot/internal/infrastructure/ai"
	infrapdf "github.com/jhoicas/tendero-bot/internal/infrastructure/pdf"
	"github.com/jhoicas/tendero-bot/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/tendero-bot/internal/infrastructure/redis"
	"github.com/jhoicas/tendero-bot/internal/infrastructure/twilio"
	httpRouter "github.com/jhoicas/tendero-bot/internal/interfaces/http"
	"github.com/jhoicas/tendero-bot/pkg/config"
	"github.com/jhoicas/tendero-bot/pkg/logger"
	"github.com/jhoicas/tendero-bot/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Sin Redis el servicio sigue: la unicidad del message id en
		// PostgreSQL respalda la idempotencia.
		log.Warn().Err(err).Msg("Redis no disponible, idempotencia solo por base de datos")
	}

	m := metrics.New()

	itemRepo := postgres.NewItemRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	oracle := infraai.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	notifier := twilio.NewNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, cfg.Twilio.AlertTo)
	idemStore := infraredis.NewIdempotencyAdapter(redisClient)

	oracleTimeout := time.Duration(cfg.Engine.OracleTimeoutSeconds) * time.Second
	classifier := pipeline.NewIntentClassifier(oracle, cfg.Engine.ClassifierThreshold, oracleTimeout, log, m)
	extractor := pipeline.NewEntityExtractor(oracle, cfg.Engine.ExtractionThreshold, oracleTimeout, log)
	reconciler := appledger.NewReconciler(txRunner, cfg.Engine.LowStockThreshold, log)

	pipe := pipeline.New(pipeline.Deps{
		Classifier:   classifier,
		Extractor:    extractor,
		Reconciler:   reconciler,
		Items:        itemRepo,
		Entries:      ledgerRepo,
		Idempotency:  idemStore,
		Notifier:     notifier,
		HistoryDepth: cfg.Engine.HistoryDepth,
		Log:          log,
		Metrics:      m,
	})

	reportUC := appledger.NewReportUseCase(ledgerRepo, infrapdf.NewMarotoReportGenerator(cfg.App.ShopName))

	// Barrido periódico de stock bajo (recordatorios para items que quedaron
	// bajo el umbral sin disparar la alerta de borde).
	sweeper := monitor.New(itemRepo, notifier,
		time.Duration(cfg.Engine.SweepIntervalMinutes)*time.Minute, log, m)
	go sweeper.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tendero Bot API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Pipeline:        pipe,
		Items:           itemRepo,
		Entries:         ledgerRepo,
		Reports:         reportUC,
		Metrics:         m,
		TwilioAuthToken: cfg.Twilio.AuthToken,
		PublicURL:       cfg.App.PublicURL,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
