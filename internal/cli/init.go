// Package cli provides common CLI initialization utilities shared by
// cmd/finanzas, cmd/finanzas-worker and cmd/history-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/backend"
	"finanzas/internal/config"
	"finanzas/internal/log"
	"finanzas/internal/planner"
	"finanzas/internal/services"
)

// SetupLogger builds the process logger for component at the given level and
// installs it as the slog default. An unknown level falls back to info.
func SetupLogger(component, level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	lvl, err := log.ParseLevel(level)
	if err == nil {
		cfg.Level = lvl
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenLedger creates the configured ledger backend or exits the process.
func OpenLedger(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.Result {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return result
}

// OpenPlanCache creates the report cache described by cfg.
func OpenPlanCache(logger *log.Logger, cfg *config.Config) *backend.PlanCache {
	return backend.NewPlanCache(backend.CacheConfig{
		RedisAddr: cfg.RedisAddr,
		Size:      cfg.PlanCacheSize,
		TTL:       cfg.PlanCacheTTL,
	}, logger.Logger)
}

// NewPlanService wires a plan service with the configured horizons.
func NewPlanService(cfg *config.Config, ledger *backend.Result, reports *backend.PlanCache) *services.PlanService {
	return services.NewPlanService(ledger.Ledger, reports.Reports, cfg.PlanHorizon, planner.Options{
		Horizon:    cfg.ProjectionHorizon,
		MinPeriods: cfg.ProjectionMinPeriods,
	})
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
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
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
