package services

import (
	"context"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger"
	applog "gastos/internal/log"
	"gastos/internal/storage"
)

type recordStorage interface {
	Insert(ctx context.Context, r core.Record) (int64, error)
	Close() error
}

type recordPublisher interface {
	PublishRecordAppended(ctx context.Context, id, ownerID int64) error
	Close() error
}

// RecordService stores records in SQLite and announces them on AMQP so the
// worker can mirror them to the spreadsheet.
type RecordService struct {
	storage    recordStorage
	amqpClient recordPublisher
	logger     *applog.Logger
}

// NewRecordService accepts a nil amqpClient; records then wait for the
// pending-sync sweep.
func NewRecordService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, logger *applog.Logger) *RecordService {
	if logger == nil {
		logger = applog.Default(applog.ComponentLedger)
	}
	s := &RecordService{logger: logger}
	if repo != nil {
		s.storage = repo
	}
	if amqpClient != nil {
		s.amqpClient = amqpClient
	}
	return s
}

// CreateRecord saves the record locally, then publishes a sync message. A
// failed publish is logged and does not fail the call.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	id, err := s.storage.Insert(ctx, r)
	if err != nil {
		return 0, ledger.Wrap(ledger.OpAppend, fmt.Errorf("save record: %w", err))
	}

	if err := s.publishSyncMessage(ctx, id, r.OwnerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}
	return id, nil
}

func (s *RecordService) publishSyncMessage(ctx context.Context, id int64, owner core.OwnerID) error {
	if s.amqpClient == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping sync message", applog.FieldRecordID, id)
		return nil
	}
	return s.amqpClient.PublishRecordAppended(ctx, id, int64(owner))
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
