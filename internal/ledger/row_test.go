package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func TestEncodeDecodeRow(t *testing.T) {
	in := core.Record{
		OwnerID:    555,
		Amount:     decimal.RequireFromString("15.00"),
		Category:   "Mercado",
		Method:     "cartão caixa",
		OccurredOn: core.NewDate(2025, 11, 1),
	}
	row := EncodeRow(in)
	want := []string{"555", "15", "Mercado", "cartão caixa", "2025-11-01"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("column %d: got %q, want %q", i, row[i], want[i])
		}
	}
	out, err := DecodeRow(row)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestDecodeRow_Formats(t *testing.T) {
	cases := []struct {
		name string
		cols []string
		date string
	}{
		{"iso", []string{"1", "10", "a", "b", "2025-01-31"}, "2025-01-31"},
		{"display date and comma amount", []string{" 1 ", "10,50", "a", "b", "31/01/2025"}, "2025-01-31"},
		{"legacy timestamp", []string{"1", "10", "a", "b", "2025-01-31 18:45"}, "2025-01-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := DecodeRow(tc.cols)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.OccurredOn.ISO() != tc.date {
				t.Errorf("date = %s, want %s", r.OccurredOn.ISO(), tc.date)
			}
		})
	}
}

func TestDecodeRow_Malformed(t *testing.T) {
	bad := [][]string{
		Header,
		{"1", "10", "a", "b"},
		{"1", "dez", "a", "b", "2025-01-01"},
		{"1", "10", "", "b", "2025-01-01"},
		{"1", "10", "a", "b", "ontem"},
	}
	for i, cols := range bad {
		if _, err := DecodeRow(cols); !errors.Is(err, ErrMalformedRow) {
			t.Fatalf("case %d: expected ErrMalformedRow, got %v", i, err)
		}
	}
	if !IsHeader(Header) || IsHeader([]string{"1"}) {
		t.Fatalf("header detection is wrong")
	}
}
