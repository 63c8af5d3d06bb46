// Package query aggregates ledger snapshots for a single owner.
//
// Every function takes the full ledger as read from the store and filters it
// to one owner; nothing here aggregates across owners or keeps state between
// calls. Sums are decimal and unrounded.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

var (
	// ErrInvalidQueryArgument marks a malformed or missing query argument.
	// Callers must not render it as a zero total.
	ErrInvalidQueryArgument = errors.New("invalid query argument")
	// ErrNoRecords is returned when the owner has nothing recorded yet.
	ErrNoRecords = errors.New("no records")
)

// MatchMode selects how TotalByMethod compares the requested method.
type MatchMode int

const (
	// MatchExact is for method names taken verbatim from a menu or command argument.
	MatchExact MatchMode = iota
	// MatchSubstring is for free-form phrasing ("quanto gastei no cartão").
	MatchSubstring
)

func (m MatchMode) String() string {
	if m == MatchSubstring {
		return "substring"
	}
	return "exact"
}

type predicate func(core.Record) bool

func sum(records []core.Record, owner core.OwnerID, keep predicate) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.OwnerID != owner {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		total = total.Add(r.Amount)
	}
	return total
}

// Total sums every amount recorded by owner. An owner without records totals 0.
func Total(records []core.Record, owner core.OwnerID) decimal.Decimal {
	return sum(records, owner, nil)
}

// TotalInMonth sums the owner's records dated within month.
func TotalInMonth(records []core.Record, owner core.OwnerID, month Month) (decimal.Decimal, error) {
	if err := month.Validate(); err != nil {
		return decimal.Zero, err
	}
	return sum(records, owner, func(r core.Record) bool {
		return month.Contains(r.OccurredOn)
	}), nil
}

// TotalByCategory sums the owner's records whose category equals category, ignoring case.
func TotalByCategory(records []core.Record, owner core.OwnerID, category string) (decimal.Decimal, error) {
	key := core.NormalizeKey(category)
	if key == "" {
		return decimal.Zero, fmt.Errorf("%w: empty category", ErrInvalidQueryArgument)
	}
	return sum(records, owner, func(r core.Record) bool {
		return r.CategoryKey() == key
	}), nil
}

// TotalByMethod sums the owner's records paid with method. In MatchSubstring
// mode a stored "cartão caixa" matches a requested "caixa".
func TotalByMethod(records []core.Record, owner core.OwnerID, method string, mode MatchMode) (decimal.Decimal, error) {
	key := core.NormalizeKey(method)
	if key == "" {
		return decimal.Zero, fmt.Errorf("%w: empty payment method", ErrInvalidQueryArgument)
	}
	var keep predicate
	switch mode {
	case MatchExact:
		keep = func(r core.Record) bool { return r.MethodKey() == key }
	case MatchSubstring:
		keep = func(r core.Record) bool { return strings.Contains(r.MethodKey(), key) }
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown match mode %d", ErrInvalidQueryArgument, mode)
	}
	return sum(records, owner, keep), nil
}

// groupBy sums the owner's records per key in first-appearance order. The
// label of a group is the display form of its first record.
func groupBy(records []core.Record, owner core.OwnerID, keep predicate, key func(core.Record) (string, string)) core.Breakdown {
	index := map[string]int{}
	var out core.Breakdown
	for _, r := range records {
		if r.OwnerID != owner {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		k, label := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, core.LabelAmount{Label: label, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(r.Amount)
	}
	return out
}

func byCategory(r core.Record) (string, string) { return r.CategoryKey(), strings.TrimSpace(r.Category) }
func byMethod(r core.Record) (string, string)   { return r.MethodKey(), strings.TrimSpace(r.Method) }

// TopCategory returns the category with the greatest sum. Ties go to the
// category that appears first in the ledger.
func TopCategory(records []core.Record, owner core.OwnerID) (string, error) {
	groups := groupBy(records, owner, nil, byCategory)
	if len(groups) == 0 {
		return "", ErrNoRecords
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.Amount.GreaterThan(best.Amount) {
			best = g
		}
	}
	return best.Label, nil
}

func positive(b core.Breakdown) core.Breakdown {
	out := b[:0]
	for _, la := range b {
		if la.Amount.IsPositive() {
			out = append(out, la)
		}
	}
	return out
}

// CategoryBreakdownInMonth sums the owner's records per category within month.
// Categories whose sum is zero or negative are omitted.
func CategoryBreakdownInMonth(records []core.Record, owner core.OwnerID, month Month) (core.Breakdown, error) {
	if err := month.Validate(); err != nil {
		return nil, err
	}
	groups := groupBy(records, owner, func(r core.Record) bool {
		return month.Contains(r.OccurredOn)
	}, byCategory)
	return positive(groups), nil
}

// CategoryBreakdown is CategoryBreakdownInMonth over the owner's whole history.
func CategoryBreakdown(records []core.Record, owner core.OwnerID) core.Breakdown {
	return positive(groupBy(records, owner, nil, byCategory))
}

// MethodBreakdown sums the owner's records per payment method.
func MethodBreakdown(records []core.Record, owner core.OwnerID) core.Breakdown {
	return positive(groupBy(records, owner, nil, byMethod))
}

// Summary is the combined total and top category reply.
type Summary struct {
	Total       decimal.Decimal
	TopCategory string
}

// Summarize returns the owner's total and top category. It fails with
// ErrNoRecords when the owner has nothing recorded.
func Summarize(records []core.Record, owner core.OwnerID) (Summary, error) {
	top, err := TopCategory(records, owner)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Total: Total(records, owner), TopCategory: top}, nil
}
