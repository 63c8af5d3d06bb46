package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// OwnerID is the chat platform's numeric user id. Records are keyed by it.
	OwnerID int64

	Date struct {
		time.Time
	}

	// Record is one expense entry. Records are never mutated after parsing;
	// corrections are new entries.
	Record struct {
		OwnerID    OwnerID
		Amount     decimal.Decimal
		Category   string // display casing preserved
		Method     string // payment method, display casing preserved
		OccurredOn Date
	}
)

var (
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyCategory  = errors.New("empty category")
	ErrEmptyMethod    = errors.New("empty payment method")
	ErrInvalidOwnerID = errors.New("invalid owner id")
)

func (o OwnerID) String() string {
	return strconv.FormatInt(int64(o), 10)
}

// ParseOwnerID parses the decimal form written by OwnerID.String.
func ParseOwnerID(s string) (OwnerID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, ErrInvalidOwnerID
	}
	return OwnerID(id), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping the calendar day as seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Equal reports whether both dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month() && d.Day() == other.Day()
}

// ISO returns the YYYY-MM-DD form used in persisted rows.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Display returns the DD/MM/YYYY form users type and read.
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

// NormalizeKey is the matching key for categories and methods.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CategoryKey returns the case-insensitive matching key of the category.
func (r Record) CategoryKey() string {
	return NormalizeKey(r.Category)
}

// MethodKey returns the case-insensitive matching key of the payment method.
func (r Record) MethodKey() string {
	return NormalizeKey(r.Method)
}

func (r Record) Validate() error {
	if err := r.OccurredOn.Validate(); err != nil {
		return err
	}
	if r.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(r.Method) == "" {
		return ErrEmptyMethod
	}
	return nil
}

// Equal compares every field; amounts are compared numerically so 15 equals 15.00.
func (r Record) Equal(other Record) bool {
	return r.OwnerID == other.OwnerID &&
		r.Amount.Equal(other.Amount) &&
		r.Category == other.Category &&
		r.Method == other.Method &&
		r.OccurredOn.Equal(other.OccurredOn)
}
