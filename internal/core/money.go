// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals end to end. Rounding to two fractional
// digits happens only in FormatAmount, never before aggregation.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount converts a user-typed amount into a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents, thousands separators and anything else are rejected with
// ErrInvalidAmount. Zero is a valid amount.
//
// Examples:
//
//	ParseAmount("15")     -> 15
//	ParseAmount("12,5")   -> 12.5
//	ParseAmount("-3")     -> ErrInvalidAmount
//	ParseAmount("1.2.3")  -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	s = "0" + strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two fractional digits and a decimal comma.
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatBRL renders an amount for replies, e.g. "R$ 15,00".
func FormatBRL(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-R$ " + FormatAmount(d.Neg())
	}
	return "R$ " + FormatAmount(d)
}
