package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/event-ticketing/internal/api/http"
	"github.com/spec-kit/event-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/persistence"
	"github.com/spec-kit/event-ticketing/internal/repository"
	"github.com/spec-kit/event-ticketing/internal/repository/memory"
	"github.com/spec-kit/event-ticketing/internal/service"
	"github.com/spec-kit/event-ticketing/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(cfg.App.Name, cfg.Tracing, logger)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	checks := map[string]handlers.Pinger{}
	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
		checks["postgres"] = pg
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	dispatcher := events.NewInMemoryDispatcher()
	var feed *events.RedisPublisher
	if rdb.Enabled() {
		feed = events.NewRedisPublisher(rdb.Client, cfg.Redis.EventsChannel, logger)
		checks["redis"] = rdb
	}
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notificationService, feed)

	metrics := observability.NewMetrics()
	deps := service.Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	}
	ledger := service.NewInventoryLedger(metrics)
	purchases := service.NewPurchaseService(deps, ledger)

	authService := service.NewAuthService(cfg.Auth, store.Repos().Users, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Repos().Users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Users:          handlers.NewUsersHandler(authService),
		Events:         handlers.NewEventsHandler(service.NewEventService(deps)),
		Categories:     handlers.NewCategoriesHandler(service.NewCategoryService(deps)),
		Tickets:        handlers.NewTicketsHandler(purchases),
		Registrations:  handlers.NewRegistrationsHandler(purchases),
		Promos:         handlers.NewPromoHandler(service.NewPromoService(deps)),
		Admin:          handlers.NewAdminHandler(service.NewSalesService(deps, ledger)),
		AdminUsers:     handlers.NewAdminUsersHandler(service.NewUserService(deps, cfg.Auth)),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
