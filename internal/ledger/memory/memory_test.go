package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func TestMemoryStoreAppendAndReadAll(t *testing.T) {
	s := New()
	in := core.Record{
		OwnerID:    7,
		Amount:     decimal.RequireFromString("15"),
		Category:   "mercado",
		Method:     "caixa",
		OccurredOn: core.NewDate(2025, 11, 1),
	}
	if err := s.Append(context.Background(), in); err != nil {
		t.Fatalf("unexpected append error: %v", err)
	}
	if err := s.Append(context.Background(), core.Record{OwnerID: 7}); err == nil {
		t.Fatalf("expected validation error for empty record")
	}

	got, err := s.ReadAll(context.Background())
	if err != nil || len(got) != 1 || !got[0].Equal(in) {
		t.Fatalf("unexpected read: %v err=%v", got, err)
	}

	// The returned slice is a copy.
	got[0].Category = "changed"
	again, _ := s.ReadAll(context.Background())
	if again[0].Category != "mercado" {
		t.Fatalf("store leaked its backing slice")
	}
}

func TestNewFromFileSeedsAndSkipsBadRows(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.csv"))
	if err != nil || s.Len() != 0 {
		t.Fatalf("expected empty store for missing file, got len=%d err=%v", s.Len(), err)
	}

	path := filepath.Join(dir, "ledger.csv")
	content := "owner_id,amount,category,method,occurred_on\n" +
		"# comment\n" +
		"1,15,mercado,caixa,2025-11-01\n" +
		"1,not-a-number,mercado,caixa,2025-11-01\n" +
		"2,\"7,50\",padaria,cartão caixa,01/11/2025\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	recs, _ := s.ReadAll(context.Background())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1].Method != "cartão caixa" || !recs[1].Amount.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}
