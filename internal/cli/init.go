// Package cli provides common CLI initialization utilities shared by
// cmd/gastos, cmd/gastos-worker and cmd/gastosctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gastos/internal/config"
	applog "gastos/internal/log"
	"gastos/internal/storage"
)

// SetupLogger builds the application logger from LOG_LEVEL and LOG_FORMAT
// and installs it as the slog default.
func SetupLogger(level, format string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Format = applog.ParseFormat(format)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads .env and the environment, then sets up logging.
func LoadConfig() (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	return cfg, SetupLogger(cfg.LogLevel, cfg.LogFormat)
}

// MustValidate runs validate or exits the process on failure.
func MustValidate(logger *applog.Logger, validate func() error) {
	if err := validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
