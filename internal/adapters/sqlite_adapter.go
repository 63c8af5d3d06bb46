package adapters

import (
	"context"

	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/services"
	"gastos/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and RecordService to ledger.Store:
// writes go through the service so they are announced on AMQP, reads come
// straight from SQLite.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

var _ ledger.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) Append(ctx context.Context, r core.Record) error {
	_, err := a.service.CreateRecord(ctx, r)
	return err
}

func (a *SQLiteAdapter) ReadAll(ctx context.Context) ([]core.Record, error) {
	return a.storage.ReadAll(ctx)
}

// Close releases the database and broker connections.
func (a *SQLiteAdapter) Close() error {
	return a.service.Close()
}
