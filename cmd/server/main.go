/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the dealer core server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Build the logger (development or production encoding)
  3. Initialize SQLite store
  4. Wire the domain: ledger, sales, workshop, closing, notifications, staff
  5. Seed demo data when enabled and the store is empty
  6. Start the auto-close scheduler
  7. Start server with graceful shutdown

CONFIGURATION (environment, see config/config.go):
  PORT                         HTTP server port (default: 8080)
  ENVIRONMENT                  development | production
  DB_PATH                      SQLite database path (":memory:" works)
  CORS_ORIGINS                 Comma-separated allowed origins
  AUTO_CLOSE_INTERVAL_SECONDS  Scheduler tick (default: 300)
  SEED_DEMO_DATA               Load the demo dataset on empty stores

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trotech/dealer-core/api"
	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/config"
	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/staff"
	"github.com/trotech/dealer-core/store/sqlite"
	"github.com/trotech/dealer-core/workshop"
)

func main() {
	cfg := config.Load()

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Wire the domain
	emitter := notify.NewEmitter(store, logger)
	ledgerSvc := ledger.New(store, ledger.WithNotifier(emitter))
	salesSvc := sales.NewProcessor(ledgerSvc, store)
	workshopSvc := workshop.NewProcessor(ledgerSvc, store)
	closingSvc := closing.NewEngine(store, logger, closing.WithNotifier(emitter))
	staffSvc := staff.NewService(store)

	seeder := &api.Seeder{Store: store, Notify: emitter, Log: logger}
	if cfg.SeedDemoData {
		if err := seeder.Seed(context.Background()); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	handler := &api.Handler{
		Ledger:   ledgerSvc,
		Sales:    salesSvc,
		Workshop: workshopSvc,
		Closing:  closingSvc,
		Notify:   emitter,
		Staff:    staffSvc,
		Resetter: store,
		Seeder:   seeder,
		Log:      logger,
	}

	router := api.NewRouter(handler, cfg.CORSOrigins)

	// Background day-close
	scheduler := api.NewAutoCloseScheduler(closingSvc, logger)
	scheduler.CheckInterval = cfg.AutoCloseInterval
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Production() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
