package main

import (
	"context"
	"os"
	"time"

	"finanzas/internal/cli"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentHistory, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting history-worker", "backend", cfg.DataBackend, "interval", cfg.HistoryInterval)

	ledger := cli.OpenLedger(context.Background(), logger, cfg)
	defer ledger.Close()

	var exporter sheets.HistoryExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Warn("Google Sheets unavailable, history export disabled", "error", err)
		} else {
			exporter = client
		}
	}

	processor := services.NewHistoryProcessor(ledger.Ledger, exporter, services.HistoryProcessorConfig{
		Interval: cfg.HistoryInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Error("Error stopping history processor", "error", err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start history processor", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
