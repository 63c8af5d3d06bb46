package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gastos/internal/core"
	"gastos/internal/ledger"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; serializing through a single connection
	// avoids SQLITE_BUSY between the bot and the sync sweep.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Values of the sync_status column.
const (
	SyncPending = "pending"
	SyncSyncing = "syncing"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// StoredRecord is a record together with its row metadata.
type StoredRecord struct {
	ID         int64
	Record     core.Record
	CreatedAt  time.Time
	SyncStatus string
}

// Insert stores the record and returns its row id.
func (r *SQLiteRepository) Insert(ctx context.Context, rec core.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (owner_id, amount, category, method, occurred_on) VALUES (?, ?, ?, ?, ?)`,
		int64(rec.OwnerID), rec.Amount.String(), rec.Category, rec.Method, rec.OccurredOn.ISO())
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"owner_id", rec.OwnerID,
		"amount", rec.Amount.String(),
		"category", rec.Category)
	return id, nil
}

// Append implements ledger.Appender.
func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if _, err := r.Insert(ctx, rec); err != nil {
		return ledger.Wrap(ledger.OpAppend, err)
	}
	return nil
}

// ReadAll implements ledger.Reader. Records come back in insertion order.
func (r *SQLiteRepository) ReadAll(ctx context.Context) ([]core.Record, error) {
	rows, err := r.query(ctx, `SELECT `+recordColumns+` FROM records ORDER BY id`)
	if err != nil {
		return nil, ledger.Wrap(ledger.OpReadAll, err)
	}
	out := make([]core.Record, 0, len(rows))
	for _, sr := range rows {
		out = append(out, sr.Record)
	}
	return out, nil
}

// GetRecord retrieves a single record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (*StoredRecord, error) {
	rows, err := r.query(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get record by id: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("get record %d: %w", id, ErrNotFound)
	}
	return &rows[0], nil
}

// PendingSync returns up to limit records not yet mirrored, oldest first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]StoredRecord, error) {
	rows, err := r.query(ctx,
		`SELECT `+recordColumns+` FROM records WHERE sync_status = 'pending' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	return rows, nil
}

// MarkSynced marks a record as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// ClaimForSync moves a pending record to syncing. It reports false when the
// record is not pending, i.e. another mirror pass already took it.
func (r *SQLiteRepository) ClaimForSync(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = 'syncing' WHERE id = ? AND sync_status = 'pending'`, id)
	if err != nil {
		return false, fmt.Errorf("claim record for sync: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim record for sync: %w", err)
	}
	return n == 1, nil
}

// ReleaseClaim puts a claimed record back to pending.
func (r *SQLiteRepository) ReleaseClaim(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = 'pending' WHERE id = ? AND sync_status = 'syncing'`, id)
	if err != nil {
		return fmt.Errorf("release sync claim: %w", err)
	}
	return nil
}

// ResetStaleClaims returns every syncing record to pending. Only safe while
// no mirror pass is running, i.e. at worker startup.
func (r *SQLiteRepository) ResetStaleClaims(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = 'pending' WHERE sync_status = 'syncing'`)
	if err != nil {
		return 0, fmt.Errorf("reset stale sync claims: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset stale sync claims: %w", err)
	}
	return n, nil
}

// MarkSyncError marks a record as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE records SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

const recordColumns = `id, owner_id, amount, category, method, occurred_on, created_at, sync_status`

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var (
			sr                 StoredRecord
			owner              int64
			amount, occurredOn string
		)
		if err := rows.Scan(&sr.ID, &owner, &amount, &sr.Record.Category, &sr.Record.Method,
			&occurredOn, &sr.CreatedAt, &sr.SyncStatus); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := ledger.DecodeRow([]string{
			core.OwnerID(owner).String(), amount, sr.Record.Category, sr.Record.Method, occurredOn,
		})
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed record row", "id", sr.ID, "error", err)
			continue
		}
		sr.Record = rec
		out = append(out, sr)
	}
	return out, rows.Err()
}
