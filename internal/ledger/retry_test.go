package ledger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gastos/internal/core"
	applog "gastos/internal/log"
)

type flakyStore struct {
	failures int
	err      error
	calls    int
	records  []core.Record
}

func (f *flakyStore) Append(_ context.Context, r core.Record) error {
	f.calls++
	if f.calls <= f.failures {
		return Wrap(OpAppend, f.err)
	}
	f.records = append(f.records, r)
	return nil
}

func (f *flakyStore) ReadAll(_ context.Context) ([]core.Record, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, Wrap(OpReadAll, f.err)
	}
	return f.records, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestRetrying_RecoversFromTransientFailures(t *testing.T) {
	next := &flakyStore{failures: 2, err: errors.New("connection reset by peer")}
	var buf bytes.Buffer
	logger := applog.New(applog.Config{
		Component: applog.ComponentLedger,
		Handler:   slog.NewTextHandler(&buf, nil),
	})
	r := NewRetrying(next, 3, logger)
	r.sleep = noSleep

	if err := r.Append(context.Background(), core.Record{OwnerID: 1}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if next.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", next.calls)
	}
	if got := strings.Count(buf.String(), "component=ledger"); got != 2 {
		t.Fatalf("expected 2 retry lines tagged with the ledger component, got %d:\n%s", got, buf.String())
	}
}

func TestRetrying_GivesUpWithStoreError(t *testing.T) {
	next := &flakyStore{failures: 10, err: errors.New("connection refused")}
	r := NewRetrying(next, 2, nil)
	r.sleep = noSleep

	_, err := r.ReadAll(context.Background())
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	var se *StoreError
	if !errors.As(err, &se) || se.Op != OpReadAll {
		t.Fatalf("expected StoreError for read_all, got %#v", err)
	}
	if next.calls != 3 {
		t.Fatalf("expected 1 call + 2 retries, got %d", next.calls)
	}
}

func TestRetrying_DoesNotRetryPermanentErrors(t *testing.T) {
	next := &flakyStore{failures: 1, err: errors.New("permission denied")}
	r := NewRetrying(next, 5, nil)
	r.sleep = noSleep

	err := r.Append(context.Background(), core.Record{})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected a single call, got %d", next.calls)
	}
}

func TestRetrying_PassesValidationErrorsThrough(t *testing.T) {
	next := &rejectingStore{}
	r := NewRetrying(next, 5, nil)
	r.sleep = noSleep

	err := r.Append(context.Background(), core.Record{})
	if !errors.Is(err, core.ErrEmptyCategory) || errors.Is(err, ErrStore) {
		t.Fatalf("expected plain validation error, got %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected a single call, got %d", next.calls)
	}
}

type rejectingStore struct{ calls int }

func (s *rejectingStore) Append(context.Context, core.Record) error {
	s.calls++
	return core.ErrEmptyCategory
}

func (s *rejectingStore) ReadAll(context.Context) ([]core.Record, error) { return nil, nil }
