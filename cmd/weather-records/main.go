package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "weather-records/internal/api/http"
	"weather-records/internal/config"
	"weather-records/internal/geocoding"
	"weather-records/internal/scheduler"
	"weather-records/internal/store"
	"weather-records/internal/weather"
	"weather-records/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	archive := providers.NewArchiveProvider(httpClient, cfg.ArchiveBaseURL)
	forecast := providers.NewForecastProvider(httpClient, cfg.ForecastBaseURL)

	svc := weather.NewService(archive, forecast, weather.Policy{
		ArchiveLagDays: cfg.ArchiveLagDays,
		MaxRangeDays:   cfg.MaxRangeDays,
	})

	records := store.New(cfg.RecordsBaseURL, httpClient)
	geo := geocoding.New(cfg.GeocodingBaseURL, httpClient)

	// Periodic cache re-sync against the records service.
	sched := scheduler.New(records, cfg.SyncInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-records",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-records",
		})
	})

	httpapi.RegisterRoutes(app, svc, records, geo)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
