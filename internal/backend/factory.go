package backend

import (
	"context"
	"fmt"

	"gastos/internal/adapters"
	"gastos/internal/amqp"
	"gastos/internal/ledger"
	"gastos/internal/ledger/google"
	"gastos/internal/ledger/memory"
	applog "gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory. Backends log under their own
// components through logger's handler.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Default(applog.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.MaxRetries > 0 {
		res.Backend = ledger.NewRetrying(res.Backend, config.MaxRetries, f.logger.WithComponent(applog.ComponentLedger))
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; without it rows stay pending until a sweep mirrors them.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	recordService := services.NewRecordService(sqliteRepo, amqpClient, f.logger.WithComponent(applog.ComponentLedger))
	adapter := adapters.NewSQLiteAdapter(sqliteRepo, recordService)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Backend:    adapter,
		Cleanup:    adapter.Close,
		Repository: sqliteRepo,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	sheetsCfg := config.SheetsConfig()
	sheetsCfg.Logger = f.logger.WithComponent(applog.ComponentSheets)
	cli, err := google.New(ctx, sheetsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized memory backend")
		return &BackendResult{Backend: memory.New()}, nil
	}

	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed file: %w", err)
	}

	f.logger.Info("Initialized memory backend",
		"seed_file", config.SeedFile,
		"records", store.Len())

	return &BackendResult{Backend: store}, nil
}
