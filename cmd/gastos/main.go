package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/backend"
	"gastos/internal/bot"
	"gastos/internal/chart"
	"gastos/internal/cli"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

func main() {
	cfg, logger := cli.LoadConfig()
	cli.MustValidate(logger, cfg.ValidateBot)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	svc := services.NewLedgerService(
		res.Backend,
		core.NewParser(cfg.ParserOptions()),
		chart.DefaultRenderer(),
		logger,
	)

	b, err := bot.New(cfg.BotToken, svc, bot.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	// With the sqlite backend, gastos-worker is the only process that mirrors
	// rows into the spreadsheet.
	if res.Repository != nil && cfg.GoogleSpreadsheetID != "" {
		logger.Info("Records are mirrored to Google Sheets by gastos-worker",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"amqp_enabled", cfg.AMQPURL != "")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(gctx) })

	logger.Info("Starting gastos bot",
		"backend", cfg.DataBackend,
		"date_fallback", cfg.DateFallback,
		"rate_limit_per_minute", cfg.RateLimitPerMinute)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Bot stopped gracefully")
}
