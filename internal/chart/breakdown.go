// Package chart turns breakdowns into ordered chart data and renders it.
package chart

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// ErrEmptyBreakdown means there is nothing positive to chart. Callers report
// it instead of rendering an empty image.
var ErrEmptyBreakdown = errors.New("empty breakdown")

// Slice is one labeled value of a chart.
type Slice struct {
	Label string
	Value decimal.Decimal
}

// BuildBreakdown drops non-positive entries and sorts the rest by value,
// largest first, ties broken alphabetically by label.
func BuildBreakdown(b core.Breakdown) ([]Slice, error) {
	out := make([]Slice, 0, len(b))
	for _, la := range b {
		if !la.Amount.IsPositive() {
			continue
		}
		out = append(out, Slice{Label: la.Label, Value: la.Amount})
	}
	if len(out) == 0 {
		return nil, ErrEmptyBreakdown
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}
