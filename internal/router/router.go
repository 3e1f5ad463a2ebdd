package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/metricadb/metrica/internal/config"
	"github.com/metricadb/metrica/internal/handlers"
	"github.com/metricadb/metrica/internal/logging"
	"github.com/metricadb/metrica/internal/middleware"
	"github.com/metricadb/metrica/internal/store"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, st store.Store, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, st, cfg)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// Sample Ingestion Routes
	v1.Post("/samples", h.Write)
	v1.Post("/samples/batch", h.WriteBatch)
	v1.Delete("/samples", h.DeletePoints)

	// Query Routes
	v1.Get("/query", h.Query)
	v1.Get("/aggregate", h.Aggregate)
	v1.Get("/anomalies", h.Anomalies)

	// Analysis Routes
	v1.Get("/trends", h.Trends)
	v1.Get("/correlations", h.Correlations)
	v1.Get("/patterns", h.Patterns)
	v1.Get("/forecast", h.Forecast)

	// Engine Stats
	v1.Get("/stats", h.Stats)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, st store.Store, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Metrica",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, st, cfg)

	return app
}
