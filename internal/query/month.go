package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

var monthPattern = regexp.MustCompile(`^(\d{2})/(\d{4})$`)

// ParseMonth parses "MM/YYYY". Anything else is ErrInvalidQueryArgument.
func ParseMonth(s string) (Month, error) {
	m := monthPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Month{}, fmt.Errorf("%w: month %q must be MM/YYYY", ErrInvalidQueryArgument, s)
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	out := Month{Year: year, Month: time.Month(month)}
	if err := out.Validate(); err != nil {
		return Month{}, err
	}
	return out, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Validate() error {
	if m.Month < time.January || m.Month > time.December {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidQueryArgument, m.Month)
	}
	if m.Year < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidQueryArgument, m.Year)
	}
	return nil
}

// Contains reports whether d falls between the first and last day of m, inclusive.
func (m Month) Contains(d core.Date) bool {
	return d.Year() == m.Year && d.Month() == int(m.Month)
}

func (m Month) String() string {
	return fmt.Sprintf("%02d/%04d", int(m.Month), m.Year)
}
