// Package cli provides the initialization steps shared by the fintrack
// subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// SetupLogger builds the root logger at the given level and installs it as
// the slog default.
func SetupLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{Level: lvl, Component: log.ComponentApp, Output: os.Stdout})
	log.SetDefault(logger)
	return logger, err
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadConfig reads the environment (after .env) and validates it.
func LoadConfig(envFiles ...string) (*config.Config, error) {
	LoadEnvFile(envFiles...)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bootstrap loads configuration and sets up logging for a subcommand.
func Bootstrap(envFiles ...string) (*config.Config, *log.Logger, error) {
	cfg, err := LoadConfig(envFiles...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := SetupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// InitSQLite opens the database at dbPath, applying pending migrations.
func InitSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		return nil, fmt.Errorf("initialize sqlite: %w", err)
	}
	return repo, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
