package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-portal/internal/api/http"
	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/service"
	"github.com/spec-kit/support-portal/internal/worker"
)

func main() {
	root := &cli.Command{
		Name:  "support-portal",
		Usage: "Support portal API server and operator commands",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: func(ctx context.Context, _ *cli.Command) error { return serve(ctx) },
			},
			demosCommand(),
		},
		Action: func(ctx context.Context, _ *cli.Command) error { return serve(ctx) },
	}
	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads configuration and the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func serve(parent context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	stores, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open backends: %w", err)
	}
	defer stores.Close()

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(dispatcher, 256, logger)
	service.NewNotificationService(notifications, logger, cfg.Notification).RegisterHandlers()
	notifications.Start()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   stores.users,
		Sessions:   stores.sessions,
		BcryptCost: cfg.Auth.BcryptCost,
		SessionTTL: cfg.Session.TTL(),
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: stores.tickets,
		Dispatcher: notifications,
		Logger:     logger,
	})
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		DemoRequestRepo: stores.demos,
		Dispatcher:      notifications,
		Logger:          logger,
	})

	cookies := auth.NewSessionCookies(auth.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secret: cfg.Session.Secret,
		Secure: cfg.App.IsProduction(),
		TTL:    cfg.Session.TTL(),
	})
	metrics := observability.NewMetrics()

	app := httptransport.NewServer(logger, metrics, httptransport.ServerConfig{
		AppName: cfg.App.Name,
		Middleware: httptransport.MiddlewareConfig{
			Timeout:      cfg.App.RequestTimeout(),
			AllowOrigins: cfg.CORS.AllowOrigins,
		},
	}, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, stores.pingers, metrics),
		Auth:     handlers.NewAuthHandler(authService, cookies),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Intake:   handlers.NewIntakeHandler(intakeService),
		Sessions: auth.NewSessionMiddleware(cookies, authService),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("db", cfg.Database.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := notifications.Stop(shutdownCtx); err != nil {
		logger.Warn("notification drain", zap.Error(err))
	}
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
