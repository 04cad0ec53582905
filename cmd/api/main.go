// Command api is the MedTrack API server.
//
// Usage:
//
//	medtrack-api
//	API_PORT=8080 medtrack-api

// @title MedTrack API
// @version 1.0.0
// @description Household medication adherence API: schedules, dose logs, pill scanning, adherence stats, and web-push dose/refill reminders.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name SmartAid
// @license.name MIT
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartaid/medtrack/internal/api"
	"github.com/smartaid/medtrack/internal/cache"
	"github.com/smartaid/medtrack/internal/config"
	"github.com/smartaid/medtrack/internal/db"
	"github.com/smartaid/medtrack/internal/maintenance"
	"github.com/smartaid/medtrack/internal/notify"
	"github.com/smartaid/medtrack/internal/pill"

	_ "github.com/smartaid/medtrack/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Hydrate the push subscription registry from stored subscriptions
	registry := notify.NewRegistry(logger)
	registry.Load(ctx, pool.Pool)
	logger.Info("Subscription registry loaded", "subscriptions", registry.Count())

	// Push dispatcher (inert when VAPID keys are absent)
	dispatcher := notify.NewDispatcher(registry, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, logger)

	// Background schedulers: per-minute dose reminders, daily refill sweep
	source := notify.PGSource{Pool: pool.Pool}
	reminders := notify.NewReminderScheduler(source, registry, dispatcher,
		notify.NewDayTracker(), cfg.ReminderCheckInterval, cfg.ReminderLead, logger)
	go reminders.Run(ctx)
	refills := notify.NewRefillScheduler(source, registry, dispatcher, cfg.RefillCheckInterval, logger)
	go refills.Run(ctx)
	logger.Info("Reminder schedulers started",
		"check_interval", cfg.ReminderCheckInterval,
		"lead", cfg.ReminderLead,
		"refill_interval", cfg.RefillCheckInterval)

	// Maintenance tickers (log retention, expired subscription purge)
	go maintenance.Start(ctx, pool.Pool, registry, maintenance.DefaultConfig(), logger)

	// Pill identification (external backend optional)
	inference := pill.NewInferenceClient(cfg.PillInferenceURL, cfg.PillInferenceKey, 60, logger)
	identifier := pill.NewIdentifier(inference, time.Now().UnixNano(), logger)

	// Create router
	router := api.NewRouter(pool.Pool, appCache, cfg, registry, dispatcher, identifier)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting MedTrack API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
