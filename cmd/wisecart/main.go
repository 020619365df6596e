package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/WiseCart620/wisecartfrontend-sub001/internal/app"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/auth"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/catalog"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/events"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/files"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/observability"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/backend"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/cache"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/platform/db"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/procurement"
	"github.com/WiseCart620/wisecartfrontend-sub001/internal/shared"
	"github.com/WiseCart620/wisecartfrontend-sub001/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	// Money travels as JSON numbers on the API and to the backend.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var dbpool *pgxpool.Pool
	if cfg.PersistenceEnabled() {
		dbpool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbpool.Close()
		if err := db.EnsureSchema(ctx, dbpool); err != nil {
			logger.Error("ensure schema", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Warn("PG_DSN not set, audit trail and payment idempotency disabled")
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

	metrics := observability.NewMetrics()
	bus := events.NewBus(logger)
	bus.SubscribeAll(func(_ context.Context, evt events.Event) {
		metrics.CountWorkflowEvent(string(evt.Topic()))
	})

	sessionManager := shared.NewSessionManager(redisClient, "wisecart_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	backendClient := backend.NewClient(backend.Config{
		BaseURL:        cfg.BackendURL,
		Timeout:        cfg.BackendTimeout,
		Tokens:         shared.ActorToken,
		Logger:         logger,
		OnUnauthorized: auth.TeardownOnUnauthorized(sessionManager),
	})

	queueRedis, err := cfg.QueueRedis()
	if err != nil {
		logger.Error("parse queue redis", slog.Any("error", err))
		os.Exit(1)
	}
	jobClient, err := jobs.NewClient(queueRedis)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(queueRedis)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalog.NewRepository(backendClient), catalogCache, logger)
	if err := catalogCache.Listen(ctx, logger, func(ctx context.Context, version int64) {
		bus.Publish(ctx, catalog.Changed{Version: version})
	}); err != nil {
		logger.Warn("catalog cache listener", slog.Any("error", err))
	}

	deps := procurement.Dependencies{
		Locks:  shared.NewActionLocker(redisClient, cfg.ActionLockTTL),
		Events: bus,
		Logger: logger,
	}
	if dbpool != nil {
		deps.Audit = shared.NewAuditLogger(dbpool)
		deps.Idempotency = shared.NewIdempotencyStore(dbpool)
	}
	procurementService := procurement.NewService(procurement.NewRepository(backendClient), catalogService, deps)

	eventStream := events.NewStream(bus, logger)
	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        auth.NewHandler(logger, auth.NewService(backendClient), sessionManager, csrfManager),
		CatalogHandler:     catalog.NewHandler(logger, catalogService, jobClient),
		ProcurementHandler: procurement.NewHandler(logger, procurementService, cfg.UploadMaxBytes),
		FilesHandler:       files.NewHandler(logger, backendClient),
		EventStream:        eventStream,
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}
	server.RegisterOnShutdown(eventStream.Close)

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
