// Package google stores the ledger in a Google Sheets spreadsheet, one row
// per record.
package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	"gastos/internal/ledger"
	applog "gastos/internal/log"
)

const DefaultSheetName = "Gastos"

// Config selects the spreadsheet and how to authenticate against it.
// Exactly one credentials source is used, in field order.
type Config struct {
	SpreadsheetID string
	SheetName     string

	ServiceAccountJSON   string
	ServiceAccountFile   string
	ServiceAccountBase64 string

	// Logger defaults to the slog default under the sheets component.
	Logger *applog.Logger
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger

	mu            sync.Mutex
	headerChecked bool
}

var _ ledger.Store = (*Client)(nil)

// New creates a Sheets-backed ledger. Extra options are passed to the Sheets
// service and replace the credentials lookup when given.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}

	logger := cfg.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentSheets)
	}

	if len(opts) == 0 {
		creds, err := credentialsJSON(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets ledger ready", "spreadsheet_id", spreadsheetID, "sheet", sheet)

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheet, logger: logger}, nil
}

// credentialsJSON resolves service account credentials from inline JSON, a
// file, base64 or GOOGLE_APPLICATION_CREDENTIALS.
func credentialsJSON(ctx context.Context, cfg Config, logger *applog.Logger) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	encoded := strings.TrimSpace(cfg.ServiceAccountBase64)
	if inline == "" && file == "" && encoded == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	case encoded != "":
		b, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode base64 service account: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_SERVICE_ACCOUNT_BASE64 or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) rng(cells string) string {
	return quoteSheetName(c.sheetName) + "!" + cells
}

// quoteSheetName quotes name for A1 notation, doubling embedded quotes.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ensureHeader writes the header row into an empty sheet. It runs once per client.
func (c *Client) ensureHeader(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headerChecked {
		return nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A1:E1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		vr := &gsheet.ValueRange{Values: [][]any{toRow(ledger.Header)}}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rng("A1:E1"), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		c.logger.InfoContext(ctx, "Wrote ledger header", "sheet", c.sheetName)
	}
	c.headerChecked = true
	return nil
}

// Append adds the record as a new row below the existing data.
func (c *Client) Append(ctx context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return ledger.Wrap(ledger.OpAppend, errors.New("sheets service not initialized"))
	}
	if err := c.ensureHeader(ctx); err != nil {
		return ledger.Wrap(ledger.OpAppend, err)
	}

	vr := &gsheet.ValueRange{Values: [][]any{toRow(ledger.EncodeRow(r))}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rng("A:E"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return ledger.Wrap(ledger.OpAppend, fmt.Errorf("append to sheet %s: %w", c.sheetName, err))
	}
	return nil
}

// ReadAll reads every row of the sheet. Rows that do not decode are logged and skipped.
func (c *Client) ReadAll(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, ledger.Wrap(ledger.OpReadAll, errors.New("sheets service not initialized"))
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:E")).Context(ctx).Do()
	if err != nil {
		return nil, ledger.Wrap(ledger.OpReadAll, fmt.Errorf("read sheet %s: %w", c.sheetName, err))
	}

	out := make([]core.Record, 0, len(resp.Values))
	for i, row := range resp.Values {
		cols := toStrings(row)
		if i == 0 && ledger.IsHeader(cols) {
			continue
		}
		if len(cols) == 0 {
			continue
		}
		rec, err := ledger.DecodeRow(cols)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping malformed ledger row", "row", i+1, applog.FieldError, err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func toRow(cols []string) []any {
	out := make([]any, len(cols))
	for i, v := range cols {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
