/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the time-tracking server: configuration, structured
  logging, SQLite store, services, HTTP router, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment, apply command-line overrides
  2. Build the zap logger for the configured environment
  3. Open the SQLite store (fatal on failure, never retried)
  4. Wire statistics and tracking services
  5. Start the HTTP server with graceful shutdown on SIGINT/SIGTERM

COMMAND-LINE FLAGS:
  -addr    listen address (overrides ADDR)
  -db      SQLite database path (overrides DB_PATH); ":memory:" works

ENVIRONMENT:
  ENV, ADDR, DB_PATH, ALLOWED_ORIGIN - see config package.
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/timetracker/api"
	"github.com/warp/timetracker/config"
	"github.com/warp/timetracker/stats"
	"github.com/warp/timetracker/store/sqlite"
	"github.com/warp/timetracker/tracker"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides ADDR)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	statistics := stats.NewService(store, logger)
	service := tracker.NewService(store, store, statistics, logger)
	handler := api.NewHandler(service, logger)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

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

// newLogger selects the zap preset for the environment.
func newLogger(env string) *zap.Logger {
	if env == config.EnvProduction {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}
