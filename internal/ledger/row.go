package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gastos/internal/core"
)

// Header is the optional first row of a persisted ledger.
var Header = []string{"owner_id", "amount", "category", "method", "occurred_on"}

// ErrMalformedRow is returned by DecodeRow for rows that are not records.
var ErrMalformedRow = errors.New("malformed ledger row")

// EncodeRow lays a record out as [owner_id, amount, category, method, occurred_on].
func EncodeRow(r core.Record) []string {
	return []string{
		r.OwnerID.String(),
		r.Amount.String(),
		r.Category,
		r.Method,
		r.OccurredOn.ISO(),
	}
}

// IsHeader reports whether cols is the header row.
func IsHeader(cols []string) bool {
	if len(cols) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(cols[0]), Header[0])
}

var rowDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04", // rows written by the first version of the bot
}

func parseRowDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range rowDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("%w: date %q", ErrMalformedRow, s)
}

// DecodeRow reverses EncodeRow. Cells are trimmed; amounts may use a decimal comma.
func DecodeRow(cols []string) (core.Record, error) {
	if len(cols) < len(Header) {
		return core.Record{}, fmt.Errorf("%w: want %d columns, got %d", ErrMalformedRow, len(Header), len(cols))
	}
	owner, err := core.ParseOwnerID(cols[0])
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: owner %q", ErrMalformedRow, cols[0])
	}
	amount, err := core.ParseAmount(cols[1])
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: amount %q", ErrMalformedRow, cols[1])
	}
	date, err := parseRowDate(cols[4])
	if err != nil {
		return core.Record{}, err
	}
	r := core.Record{
		OwnerID:    owner,
		Amount:     amount,
		Category:   strings.TrimSpace(cols[2]),
		Method:     strings.TrimSpace(cols[3]),
		OccurredOn: date,
	}
	if err := r.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return r, nil
}
