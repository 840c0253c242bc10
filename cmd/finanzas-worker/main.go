package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/cli"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
	"finanzas/internal/worker"
)

const connectAttempts = 10

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	logger.Info("Starting finanzas-worker", "backend", cfg.DataBackend)

	ledger := cli.OpenLedger(context.Background(), logger, cfg)
	defer ledger.Close()
	reports := cli.OpenPlanCache(logger, cfg)
	defer reports.Cleanup()

	var (
		planExporter    sheets.PlanExporter
		historyExporter sheets.HistoryExporter
	)
	if cfg.SheetsEnabled() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		planExporter, historyExporter = sheetsClient, sheetsClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	amqpClient, err := amqp.NewClientWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, connectAttempts)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	history := services.NewHistoryProcessor(ledger.Ledger, historyExporter, services.HistoryProcessorConfig{
		Interval: cfg.HistoryInterval,
	})
	planWorker := worker.NewPlanWorker(cli.NewPlanService(cfg, ledger, reports), history, planExporter)

	// Catch up on anything that changed while the worker was down.
	if err := planWorker.StartupRefresh(ctx); err != nil {
		logger.Error("Startup refresh failed", "error", err)
	}

	go func() {
		err := amqpClient.ConsumeLedgerEvents(ctx, planWorker.HandleLedgerEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
