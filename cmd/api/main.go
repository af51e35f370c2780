package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	metricsHttp "kpi-service/internal/metrics/adapters/http/fiber"
	metricsRepoPg "kpi-service/internal/metrics/adapters/postgres"
	"kpi-service/internal/metrics/core/cache"
	"kpi-service/internal/metrics/core/domain"
	metricsUsecase "kpi-service/internal/metrics/core/usecase"
	"kpi-service/internal/platform/config"
	"kpi-service/internal/platform/logger"

	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "kpi-service"})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "kpi-service",
	})

	// DB connection
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := metricsRepoPg.Open(openCtx, cfg.DBDriver, cfg.PostgresDSN, metricsRepoPg.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	cancelOpen()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to postgres")
	}
	defer db.Close()

	// Repository + usecase
	metricsRepository := metricsRepoPg.NewMetricsRepository(metricsRepoPg.NewSQLDB(db))
	results := cache.New[domain.MetricResult](cache.SystemClock{})

	getMetricUC := metricsUsecase.NewGetMetricUseCase(
		metricsRepository,
		domain.NewRegistry(),
		metricsUsecase.WithCache(results),
		metricsUsecase.WithTTL(cfg.CacheTTL),
		metricsUsecase.WithPageSize(cfg.PageSize),
		metricsUsecase.WithLogger(log),
	)

	// Cache janitor
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	if cfg.CachePurgeInterval > 0 {
		go purgeLoop(janitorCtx, results, cfg.CachePurgeInterval, log)
	}

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(metricsHttp.RequestLogger(log))

	metricsHandler := metricsHttp.NewMetricsHandler(getMetricUC, log)
	app.Get("/kpi", metricsHandler.GetMetric)
	app.Get("/kpi/metrics", metricsHandler.ListMetrics)
	app.Get("/healthz", metricsHandler.Health)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Error().Err(err).Msg("fiber stopped")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("fiber shutdown error")
	}

	log.Info().Msg("server exiting")
}

func purgeLoop(ctx context.Context, c *cache.Cache[domain.MetricResult], every time.Duration, log logger.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := c.Purge(); n > 0 {
				log.Debug().Int("evicted", n).Msg("cache purge")
			}
		}
	}
}
