package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/flashmac/repair-tracker/internal/api/http"
	"github.com/flashmac/repair-tracker/internal/api/http/handlers"
	"github.com/flashmac/repair-tracker/internal/auth"
	"github.com/flashmac/repair-tracker/internal/config"
	"github.com/flashmac/repair-tracker/internal/events"
	"github.com/flashmac/repair-tracker/internal/mail"
	"github.com/flashmac/repair-tracker/internal/observability"
	"github.com/flashmac/repair-tracker/internal/persistence"
	"github.com/flashmac/repair-tracker/internal/repository"
	"github.com/flashmac/repair-tracker/internal/service"
	"github.com/flashmac/repair-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	metrics := observability.NewMetrics()
	gateway := mail.NewGateway(cfg.Mail, logger, metrics)
	dispatcher := events.NewAsyncDispatcher()

	notificationService := service.NewNotificationService(settingsRepo, ticketRepo, gateway, cfg.App.BaseURL, logger)
	worker.StartNotificationWorker(dispatcher, notificationService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		Dispatcher:    dispatcher,
		Notifier:      notificationService,
		SweepRecorder: redis,
		Logger:        logger,
	})
	worker.StartStaleSweep(ctx, cfg.Worker.SweepInterval(), ticketService, logger)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	if err := authService.EnsureAdmin(ctx, cfg.Auth, logger); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Public:         handlers.NewPublicHandler(ticketService),
		Settings:       handlers.NewSettingsHandler(settingsRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
