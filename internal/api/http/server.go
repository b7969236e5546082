package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/observability"
)

// ServerConfig holds app level settings.
type ServerConfig struct {
	AppName    string
	BodyLimit  int
	Middleware MiddlewareConfig
}

// NewServer builds the fiber app with the full middleware chain and routes.
func NewServer(logger *zap.Logger, metrics *observability.Metrics, cfg ServerConfig, routes RouteConfig) *fiber.App {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.Middleware)
	RegisterRoutes(app, routes)
	return app
}
