/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan ledger server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment / .env), apply flag overrides
  2. Initialize SQLite store
  3. Build the ledger service with the configured accrual policies
  4. Configure HTTP router and snapshot scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  PORT, DB_PATH, LOG_LEVEL, SCHEDULER_ENABLED, SNAPSHOT_SCHEDULE,
  ROLLOVER_POLICY, PREPAY_POLICY. A .env file is honored in development.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the snapshot scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/loans.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/loan-engine/api"
	"github.com/warp/loan-engine/config"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/store/sqlite"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// Flag overrides for local runs
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Wire the ledger service and HTTP layer
	service := ledger.NewService(store, cfg.Accrual())
	handler := api.NewHandler(service, log)
	router := api.NewRouter(handler)

	// Portfolio snapshot scheduler
	var scheduler *api.SnapshotScheduler
	if cfg.SchedulerEnabled {
		scheduler = api.NewSnapshotScheduler(service, log, cfg.SnapshotSchedule)
		if err := scheduler.Start(); err != nil {
			log.WithError(err).Fatal("failed to start snapshot scheduler")
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     *port,
			"db":       *dbPath,
			"rollover": cfg.RolloverPolicy,
			"prepay":   cfg.PrepayPolicy,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	log.Info("server stopped")
}
