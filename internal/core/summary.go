package core

import "github.com/shopspring/decimal"

// LabelAmount is an amount aggregated under a display label.
type LabelAmount struct {
	Label  string
	Amount decimal.Decimal
}

// Breakdown maps labels to summed amounts in first-appearance order.
type Breakdown []LabelAmount

// Get returns the amount stored under label, matched case-insensitively.
func (b Breakdown) Get(label string) (decimal.Decimal, bool) {
	key := NormalizeKey(label)
	for _, la := range b {
		if NormalizeKey(la.Label) == key {
			return la.Amount, true
		}
	}
	return decimal.Zero, false
}

// Total sums every entry of the breakdown.
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, la := range b {
		total = total.Add(la.Amount)
	}
	return total
}
