package backend

import (
	"context"

	"gastos/internal/ledger"
	"gastos/internal/storage"
)

// Backend is the ledger store the bot reads and appends to.
type Backend = ledger.Store

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc

	// Repository is set for the sqlite backend. Mirroring its rows to the
	// spreadsheet is left to gastos-worker.
	Repository *storage.SQLiteRepository
}

// Close runs Cleanup when present.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Transient store failures are retried this many times.
	MaxRetries int

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID        string
	GoogleSheetName            string
	GoogleServiceAccountJSON   string
	GoogleServiceAccountFile   string
	GoogleServiceAccountBase64 string

	// Memory backend specific
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
