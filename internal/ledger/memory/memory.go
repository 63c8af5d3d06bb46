package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

// Store keeps the ledger in process memory. It is the default backend for
// local runs and the store tests plug into services.
type Store struct {
	mu    sync.Mutex
	items []core.Record
}

var _ ledger.Store = (*Store)(nil)

func New(seed ...core.Record) *Store {
	return &Store{items: append([]core.Record(nil), seed...)}
}

// NewFromFile seeds the store from a CSV file laid out like the spreadsheet.
// A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	recs, err := readRows(f)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return New(recs...), nil
}

func readRows(r io.Reader) ([]core.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	var out []core.Record
	for {
		cols, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if ledger.IsHeader(cols) {
			continue
		}
		rec, err := ledger.DecodeRow(cols)
		if err != nil {
			slog.Warn("Skipping malformed seed row", "row", cols, "error", err)
			continue
		}
		out = append(out, rec)
	}
}

// Append stores the record at the end of the ledger.
func (s *Store) Append(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return nil
}

// ReadAll returns a copy of the ledger in append order.
func (s *Store) ReadAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.items...), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
