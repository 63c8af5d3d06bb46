package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"15", "15", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0", "0", true},
		{",5", "0.5", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1.234,56", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := map[string]string{
		"15":      "R$ 15,00",
		"0.005":   "R$ 0,01",
		"1234.5":  "R$ 1234,50",
		"-2.25":   "-R$ 2,25",
		"10.0049": "R$ 10,00",
	}
	for in, want := range cases {
		if got := FormatBRL(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatBRL(%s) = %q, want %q", in, got, want)
		}
	}
}
