package ledger

import (
	"context"
	"time"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/retry"
)

// Retrying decorates a Store with capped exponential backoff on transient
// failures, appends included. Errors from next are returned unchanged.
type Retrying struct {
	next       Store
	maxRetries int
	logger     *applog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

var _ Store = (*Retrying)(nil)

// NewRetrying wraps next. A nil logger logs through the slog default.
func NewRetrying(next Store, maxRetries int, logger *applog.Logger) *Retrying {
	if logger == nil {
		logger = applog.Default(applog.ComponentLedger)
	}
	return &Retrying{next: next, maxRetries: maxRetries, logger: logger, sleep: retry.Sleep}
}

func (r *Retrying) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !retry.IsConnectionError(err) || attempt >= r.maxRetries {
			break
		}
		wait := retry.Backoff(attempt)
		r.logger.WarnContext(ctx, "Ledger store call failed, retrying",
			applog.FieldOperation, op,
			"attempt", attempt+1,
			"backoff", wait,
			applog.FieldError, err)
		if serr := r.sleep(ctx, wait); serr != nil {
			break
		}
	}
	return err
}

func (r *Retrying) Append(ctx context.Context, rec core.Record) error {
	return r.do(ctx, OpAppend, func() error {
		return r.next.Append(ctx, rec)
	})
}

func (r *Retrying) ReadAll(ctx context.Context) ([]core.Record, error) {
	var out []core.Record
	err := r.do(ctx, OpReadAll, func() error {
		var err error
		out, err = r.next.ReadAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
