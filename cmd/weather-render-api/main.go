package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	httpapi "github.com/ewmrs/weather-render-api/internal/api/http"
	"github.com/ewmrs/weather-render-api/internal/catalog"
	"github.com/ewmrs/weather-render-api/internal/config"
	"github.com/ewmrs/weather-render-api/internal/listing"
	"github.com/ewmrs/weather-render-api/internal/logging"
	"github.com/ewmrs/weather-render-api/internal/metrics"
	"github.com/ewmrs/weather-render-api/internal/monitor"
	"github.com/ewmrs/weather-render-api/internal/resolve"
	"github.com/ewmrs/weather-render-api/internal/timestamps"
	"github.com/ewmrs/weather-render-api/internal/watcher"
)

const serviceName = "weather-render-api"

func main() {
	// Load configuration (godotenv is handled inside Load).
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(nil, "info", serviceName)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logging.New(nil, cfg.LogLevel, serviceName)
	log.Info().
		Str("data_root", cfg.DataRoot).
		Str("timestamp_source", string(cfg.TimestampSource)).
		Int("products", len(cfg.Products)).
		Msg("starting")

	// Core components; all stateless over the data root.
	cat := catalog.New(cfg.DataRoot, cfg.Products)
	index := timestamps.New(cfg.DataRoot, cfg.TimestampSource)
	resolver := resolve.New(cfg.DataRoot, cat)
	lister := listing.New(cfg.DataRoot)
	promMetrics := metrics.New()

	// Freshness monitor runs alongside the API.
	mon := monitor.New(cat, index, cfg.MonitorInterval, cfg.StaleAfter, log)
	if err := mon.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start freshness monitor")
	}
	defer mon.Stop()

	if cfg.WatchEnabled {
		w := watcher.New(cfg.DataRoot, cfg.Subdirs, log)
		if err := w.Start(); err != nil {
			log.Warn().Err(err).Msg("arrival watcher unavailable")
		} else {
			defer w.Stop()
		}
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	})

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promMetrics.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, &httpapi.Handlers{
		Root:         cfg.DataRoot,
		Catalog:      cat,
		Index:        index,
		Resolver:     resolver,
		Lister:       lister,
		Subdirs:      cfg.Subdirs,
		DefaultLimit: cfg.ListingDefaultLimit,
		MaxLimit:     cfg.ListingMaxLimit,
		Log:          log,
		Metrics:      promMetrics,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
