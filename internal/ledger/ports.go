// Package ledger defines the append-only store the bot records expenses in.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	Appender interface {
		// Append persists one record at the end of the ledger.
		Append(ctx context.Context, r core.Record) error
	}

	Reader interface {
		// ReadAll returns every record of every owner in ledger order.
		ReadAll(ctx context.Context) ([]core.Record, error)
	}

	Store interface {
		Appender
		Reader
	}
)

// ErrStore is matched by every StoreError.
var ErrStore = errors.New("ledger store unavailable")

// StoreError is the single failure shape adapters report. It is transient:
// the caller may retry the operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// Wrap returns err as a *StoreError for op. nil and existing StoreErrors pass through.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

const (
	OpAppend  = "append"
	OpReadAll = "read_all"
)
