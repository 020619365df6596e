package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/app"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	jobmetrics "github.com/WiseCart620/wisecartfrontend-sub001/internal/jobs"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/backend"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/cache"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/db"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
	"github.com/WiseCart620/wisecartfrontend-sub001/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))
	if cfg.BackendServiceToken == "" {
		logger.Warn("BACKEND_SERVICE_TOKEN not set, catalog warm-up calls the backend anonymously")
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	backendClient := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Tokens:  backend.StaticToken(cfg.BackendServiceToken),
		Logger:  logger,
	})
	catalogService := catalog.NewService(catalog.NewRepository(backendClient), catalog.NewCache(redisClient, cfg.CatalogCacheTTL), logger)

	metrics := jobmetrics.NewMetrics(nil)
	warmupJob := &jobs.CatalogWarmupJob{Catalog: catalogService, Logger: logger, Metrics: metrics}
	warmupTask, err := jobs.NewCatalogWarmupTask("scheduled")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskCatalogWarmup, Handler: warmupJob.Handle},
	}
	cron := []jobs.CronRegistration{
		{Spec: cfg.CatalogWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
	}

	if cfg.PersistenceEnabled() {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		cleanupJob := &jobs.IdempotencyCleanupJob{
			Store:     shared.NewIdempotencyStore(pool),
			Retention: cfg.IdempotencyRetention,
			Logger:    logger,
			Metrics:   metrics,
		}
		cleanupTask, err := jobs.NewIdempotencyCleanupTask(cfg.IdempotencyRetention)
		if err != nil {
			logger.Error("build cleanup task", slog.Any("error", err))
			os.Exit(1)
		}
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle})
		cron = append(cron, jobs.CronRegistration{Spec: cfg.IdempotencyCleanCron, Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(1)}})
	}

	queueRedis, err := cfg.QueueRedis()
	if err != nil {
		logger.Error("parse queue redis", slog.Any("error", err))
		os.Exit(1)
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: queueRedis,
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("warmup_cron", cfg.CatalogWarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
