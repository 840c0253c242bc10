package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/cli"
	apphttp "finanzas/internal/http"
	"finanzas/internal/log"
	"finanzas/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finanzas", "backend", cfg.DataBackend, "port", cfg.Port)

	ledger := cli.OpenLedger(context.Background(), logger, cfg)
	reports := cli.OpenPlanCache(logger, cfg)

	// Publishing is optional: without a broker the API works alone and the
	// worker simply never hears about changes.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	checks := map[string]apphttp.ReadinessCheck{}
	if ledger.Ping != nil {
		checks["database"] = ledger.Ping
	}
	if reports.Ping != nil {
		checks["redis"] = reports.Ping
	}

	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewLedgerService(ledger.Ledger, publisher),
		cli.NewPlanService(cfg, ledger, reports),
		apphttp.Options{
			Logger:             logger.WithComponent(log.ComponentHTTP),
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			Checks:             checks,
			TrustedProxies:     cfg.TrustedProxies,
		})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if err := reports.Cleanup(); err != nil {
			logger.Warn("Plan cache close error", "error", err)
		}
		if err := ledger.Close(); err != nil {
			logger.Warn("Ledger close error", "error", err)
		}
	})

	logger.Info("Server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
