package log

import (
	"context"
	"log/slog"
	"time"

	"gastos/internal/core"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts the logger stored by WithLogger, or wraps slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogUpdateHandled logs one handled chat update. Failures are logged at error level.
func (sl *StructuredLogger) LogUpdateHandled(ctx context.Context, owner core.OwnerID, intent string, started time.Time, err error) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	fields := NewFields().
		WithOwner(owner).
		WithIntent(intent).
		WithError(err).
		WithComponent(ComponentBot)
	fields[FieldDuration] = time.Since(started).Milliseconds()
	fields[FieldSuccess] = err == nil

	sl.logger.Logger.Log(ctx, level, "Chat update handled", fields.ToSlice()...)
}

// LogRecordAppended logs a record accepted by the ledger.
func (sl *StructuredLogger) LogRecordAppended(ctx context.Context, r core.Record) {
	fields := NewFields().
		WithRecord(r).
		WithOperation(OpAppend).
		WithComponent(ComponentLedger)

	sl.logger.Logger.InfoContext(ctx, "Record appended", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
