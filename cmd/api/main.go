package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/PacifistaPx0/helpdesk/internal/api/http"
	"github.com/PacifistaPx0/helpdesk/internal/api/http/handlers"
	"github.com/PacifistaPx0/helpdesk/internal/auth"
	"github.com/PacifistaPx0/helpdesk/internal/config"
	"github.com/PacifistaPx0/helpdesk/internal/events"
	"github.com/PacifistaPx0/helpdesk/internal/observability"
	"github.com/PacifistaPx0/helpdesk/internal/persistence"
	"github.com/PacifistaPx0/helpdesk/internal/repository"
	"github.com/PacifistaPx0/helpdesk/internal/service"
	"github.com/PacifistaPx0/helpdesk/internal/sla"
	"github.com/PacifistaPx0/helpdesk/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	var denylist *auth.Denylist
	if cfg.Auth.RevocationEnabled || cfg.Auth.RefreshRotation {
		denylist = auth.NewDenylist(redis.Client)
	}

	dispatcher := events.NewInMemoryDispatcher()
	engine := sla.NewEngine()

	authService := service.NewAuthService(cfg.Auth, userRepo, denylist)
	ticketService := service.NewTicketService(ticketRepo, userRepo, engine, dispatcher)
	dashboardService := service.NewDashboardService(ticketRepo, engine)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), denylist)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userRepo),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
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
