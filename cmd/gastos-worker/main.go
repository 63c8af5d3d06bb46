package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/backend"
	"gastos/internal/cli"
	"gastos/internal/ledger"
	"gastos/internal/ledger/google"
	applog "gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig()
	logger = logger.WithComponent(applog.ComponentWorker)
	cli.MustValidate(logger, cfg.ValidateWorker)

	logger.Info("Starting gastos-worker")

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	sheetsCfg := backendCfg.SheetsConfig()
	sheetsCfg.Logger = logger.WithComponent(applog.ComponentSheets)
	sheetsClient, err := google.New(ctx, sheetsCfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	sheets := ledger.NewRetrying(sheetsClient, cfg.StoreMaxRetries, logger.WithComponent(applog.ComponentLedger))
	syncWorker := worker.NewSyncWorker(sqliteRepo, sheets, cfg.SyncBatchSize, logger)

	// Records appended while the worker was down have no pending message.
	// This worker is the only mirror, so claims still held here are stale.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeRecordAppended(gctx, syncWorker.HandleRecordMessage)
	})

	// Periodic sweep for messages lost between insert and publish.
	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{PollInterval: cfg.SyncInterval})
	g.Go(func() error { return processor.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
