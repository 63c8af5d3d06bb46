package worker

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/ledger"
	applog "gastos/internal/log"
	"gastos/internal/retry"
	"gastos/internal/storage"
)

type recordSource interface {
	GetRecord(ctx context.Context, id int64) (*storage.StoredRecord, error)
	PendingSync(ctx context.Context, limit int) ([]storage.StoredRecord, error)
	ClaimForSync(ctx context.Context, id int64) (bool, error)
	ReleaseClaim(ctx context.Context, id int64) error
	ResetStaleClaims(ctx context.Context) (int64, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors records from SQLite into the spreadsheet ledger. A record
// is claimed before its row is appended, so the AMQP consumer and the pending
// sweep never write the same record twice.
type SyncWorker struct {
	storage   recordSource
	sheets    ledger.Appender
	batchSize int
	logger    *applog.Logger
}

func NewSyncWorker(storage recordSource, sheets ledger.Appender, batchSize int, logger *applog.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentWorker)
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
		logger:    logger,
	}
}

// HandleRecordMessage syncs the record named by an AMQP message. A non-nil
// error means the message should be redelivered; records that are gone,
// already synced or failed for good are acknowledged.
func (w *SyncWorker) HandleRecordMessage(ctx context.Context, msg *amqp.RecordAppendedMessage) error {
	w.logger.InfoContext(ctx, "Processing record message", applog.FieldRecordID, msg.ID, applog.FieldOwnerID, msg.OwnerID)

	rec, err := w.storage.GetRecord(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Record no longer exists, dropping message", applog.FieldRecordID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}
	if rec.SyncStatus != storage.SyncPending {
		w.logger.InfoContext(ctx, "Record not pending, skipping",
			applog.FieldRecordID, msg.ID,
			"sync_status", rec.SyncStatus)
		return nil
	}
	_, err = w.syncRecord(ctx, *rec)
	return err
}

// ProcessPending syncs up to one batch of pending records. It is the backup
// path for lost AMQP messages and returns how many records were synced.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.storage.PendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending records", "count", len(pending))

	synced := 0
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		ok, err := w.syncRecord(ctx, rec)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync record",
				applog.FieldOperation, applog.OpSync,
				applog.FieldRecordID, rec.ID,
				applog.FieldError, err)
			continue
		}
		if ok {
			synced++
		}
	}
	return synced, nil
}

// StartupSyncCheck releases claims left by a previous run that stopped mid
// append, then drains pending records left over from worker downtime. It
// must run before the consumer and the periodic sweep start.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	released, err := w.storage.ResetStaleClaims(ctx)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	if released > 0 {
		w.logger.WarnContext(ctx, "Released stale sync claims", "count", released)
	}

	total := 0
	for {
		n, err := w.ProcessPending(ctx)
		if err != nil {
			return fmt.Errorf("startup sync: %w", err)
		}
		total += n
		if n < w.batchSize {
			break
		}
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", total)
	return nil
}

// syncRecord claims the record and appends it to the sheet. It reports false
// when the record was not appended. Transient sheet failures put the record
// back to pending and are returned. Any other sheet failure marks the record
// as errored and is not retried.
func (w *SyncWorker) syncRecord(ctx context.Context, rec storage.StoredRecord) (bool, error) {
	claimed, err := w.storage.ClaimForSync(ctx, rec.ID)
	if err != nil {
		return false, err
	}
	if !claimed {
		w.logger.DebugContext(ctx, "Record claimed elsewhere, skipping", applog.FieldRecordID, rec.ID)
		return false, nil
	}

	if err := w.sheets.Append(ctx, rec.Record); err != nil {
		// An append cut short by shutdown is retried on the next run.
		if retry.IsConnectionError(err) || ctx.Err() != nil {
			if relErr := w.storage.ReleaseClaim(context.WithoutCancel(ctx), rec.ID); relErr != nil {
				w.logger.ErrorContext(ctx, "Failed to release sync claim", applog.FieldRecordID, rec.ID, applog.FieldError, relErr)
			}
			return false, fmt.Errorf("append to sheets: %w", err)
		}
		if markErr := w.storage.MarkSyncError(ctx, rec.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldRecordID, rec.ID, applog.FieldError, markErr)
		}
		w.logger.ErrorContext(ctx, "Record rejected by sheets, giving up",
			applog.FieldOperation, applog.OpSync,
			applog.FieldRecordID, rec.ID,
			applog.FieldError, err)
		return false, nil
	}

	if err := w.storage.MarkSynced(ctx, rec.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", applog.FieldRecordID, rec.ID, applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced record",
		applog.FieldRecordID, rec.ID,
		applog.FieldOwnerID, rec.Record.OwnerID,
		applog.FieldAmount, rec.Record.Amount.String(),
		applog.FieldCategory, rec.Record.Category)
	return true, nil
}
