/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the projection engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (viper: file + env + defaults)
  3. Initialize zap logger
  4. Initialize SQLite store, seed default config if empty
  5. Create projection engine, API handler, and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML configuration file (optional)
  -port    HTTP server port override
  -db      SQLite database path override
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/projection.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with a config file
  ./server -config=config.yaml

ENVIRONMENT:
  PROJECTION_PORT, PROJECTION_DATABASE_PATH, PROJECTION_LOGGING.LEVEL
  (viper AutomaticEnv with the "projection" prefix).

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plano/projection-engine/api"
	"github.com/plano/projection-engine/config"
	"github.com/plano/projection-engine/projection"
	"github.com/plano/projection-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "path to YAML configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		settings.Port = *port
	}
	if *dbPath != "" {
		settings.DatabasePath = *dbPath
	}

	logger, err := initializeLogger(settings.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Initialize store
	store, err := sqlite.New(settings.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Seed the stream/component configuration on first run so the
	// projection endpoints have something to serve.
	if settings.SeedDefaults {
		if err := seedConfig(context.Background(), store, logger); err != nil {
			logger.Fatal("failed to seed default configuration", zap.Error(err))
		}
	}

	engine := projection.NewEngine(store, store, logger)
	if _, err := engine.Recompute(context.Background()); err != nil {
		logger.Warn("initial snapshot computation failed", zap.Error(err))
	}

	handler := api.NewHandler(engine, store, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", settings.Port),
			zap.String("database", settings.DatabasePath))
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

// seedConfig writes the default revenue streams and marketing
// components when nothing is configured yet.
func seedConfig(ctx context.Context, store *sqlite.Store, logger *zap.Logger) error {
	cfg, err := store.GetConfig(ctx)
	if err != nil {
		return err
	}
	if len(cfg.RevenueStreams) > 0 || len(cfg.MktComponents) > 0 {
		return nil
	}
	logger.Info("seeding default configuration")
	return store.ReplaceConfig(ctx, projection.DefaultConfig())
}

// initializeLogger builds the zap logger from the logging settings.
func initializeLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
