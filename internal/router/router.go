package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soltixdb/correlator/internal/config"
	"github.com/soltixdb/correlator/internal/handlers"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/middleware"
	"github.com/soltixdb/correlator/internal/services"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, dayService *services.DayService, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, dayService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))
	app.Use(middleware.RequestMetrics())

	// Health check and metrics (no auth required)
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// Day catalog
	v1.Get("/days", h.ListDays)
	v1.Get("/days/:day", h.GetDay)

	// Matrix queries
	v1.Get("/days/:day/cells/:row/:col", h.GetCell)
	v1.Get("/days/:day/significant", h.Significant)
	v1.Get("/days/:day/transitive/:a/:b/:c", h.Transitive)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, dayService *services.DayService, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Correlator Query API",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, dayService, cfg)

	return app
}
