package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"

	"gastos/internal/core"
	"gastos/internal/ledger"
	applog "gastos/internal/log"
)

// fakeSheet serves the subset of the Sheets values API the client uses.
type fakeSheet struct {
	mu      sync.Mutex
	rows    [][]any
	fail    bool
	appends int
	updates int
	paths   []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)
	if f.fail {
		http.Error(w, `{"error":{"code":503,"message":"backend unavailable"}}`, http.StatusServiceUnavailable)
		return
	}

	var vr struct {
		Values [][]any `json:"values"`
	}
	switch {
	case r.Method == http.MethodGet:
		values := f.rows
		if strings.Contains(r.URL.Path, "A1:E1") && len(values) > 1 {
			values = values[:1]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		f.appends++
		_ = json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodPut:
		_ = json.NewDecoder(r.Body).Decode(&vr)
		if len(f.rows) == 0 {
			f.rows = append(f.rows, vr.Values...)
		} else {
			f.rows[0] = vr.Values[0]
		}
		f.updates++
		_ = json.NewEncoder(w).Encode(map[string]any{})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheet) *Client {
	return newNamedTestClient(t, fake, "")
}

func newNamedTestClient(t *testing.T, fake *fakeSheet, sheet string) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-1", SheetName: sheet},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	ctx := context.Background()
	logger := applog.Default(applog.ComponentSheets)

	b, err := credentialsJSON(ctx, Config{ServiceAccountJSON: `{"type":"service_account"}`}, logger)
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("inline: %q %v", b, err)
	}

	b, err = credentialsJSON(ctx, Config{ServiceAccountBase64: "eyJ0eXBlIjoic2VydmljZV9hY2NvdW50In0="}, logger)
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("base64: %q %v", b, err)
	}

	if _, err := credentialsJSON(ctx, Config{ServiceAccountBase64: "%%%"}, logger); err == nil {
		t.Fatalf("expected base64 decode error")
	}
	if _, err := credentialsJSON(ctx, Config{}, logger); err == nil {
		t.Fatalf("expected missing credentials error")
	}
}

func TestClient_AppendWritesHeaderOnce(t *testing.T) {
	fake := &fakeSheet{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	rec := core.Record{
		OwnerID:    42,
		Amount:     decimal.RequireFromString("15"),
		Category:   "mercado",
		Method:     "caixa",
		OccurredOn: core.NewDate(2025, 11, 1),
	}
	for i := 0; i < 2; i++ {
		if err := c.Append(ctx, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if fake.updates != 1 || fake.appends != 2 {
		t.Fatalf("want 1 header write and 2 appends, got %d and %d", fake.updates, fake.appends)
	}

	got, err := c.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 2 || !got[0].Equal(rec) {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestClient_ReadAllSkipsMalformedRows(t *testing.T) {
	fake := &fakeSheet{rows: [][]any{
		{"owner_id", "amount", "category", "method", "occurred_on"},
		{"1", "10.5", "uber", "cartão", "2025-10-02"},
		{},
		{"1", "abc", "uber", "cartão", "2025-10-02"},
		{"2", "3", "café"},
	}}
	c := newTestClient(t, fake)

	got, err := c.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 1 || got[0].Category != "uber" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestClient_ErrorsAreStoreErrors(t *testing.T) {
	fake := &fakeSheet{fail: true}
	c := newTestClient(t, fake)
	ctx := context.Background()

	_, err := c.ReadAll(ctx)
	if !errors.Is(err, ledger.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}

	err = c.Append(ctx, core.Record{
		OwnerID:    1,
		Amount:     decimal.RequireFromString("1"),
		Category:   "a",
		Method:     "b",
		OccurredOn: core.NewDate(2025, 1, 1),
	})
	if !errors.Is(err, ledger.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}

	// Validation failures are not store failures.
	err = c.Append(ctx, core.Record{OwnerID: 1})
	if err == nil || errors.Is(err, ledger.ErrStore) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuoteSheetName(t *testing.T) {
	tests := map[string]string{
		"Gastos":       "'Gastos'",
		"Gastos 2025":  "'Gastos 2025'",
		"Gastos d'Ana": "'Gastos d''Ana'",
	}
	for in, want := range tests {
		if got := quoteSheetName(in); got != want {
			t.Errorf("quoteSheetName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_QuotesSheetNameInRanges(t *testing.T) {
	fake := &fakeSheet{}
	c := newNamedTestClient(t, fake, "Gastos d'Ana")

	err := c.Append(context.Background(), core.Record{
		OwnerID:    1,
		Amount:     decimal.RequireFromString("15"),
		Category:   "mercado",
		Method:     "pix",
		OccurredOn: core.NewDate(2025, 11, 1),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(fake.paths) == 0 {
		t.Fatal("no requests reached the sheet")
	}
	for _, p := range fake.paths {
		if !strings.Contains(p, "/values/'Gastos d''Ana'!") {
			t.Fatalf("range not quoted: %s", p)
		}
	}
}
