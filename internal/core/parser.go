package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ParseErrorKind tells callers which corrective message to show.
type ParseErrorKind int

const (
	TooFewFields ParseErrorKind = iota + 1
	InvalidAmount
	InvalidDate
	TooManyFields
)

func (k ParseErrorKind) String() string {
	switch k {
	case TooFewFields:
		return "too_few_fields"
	case InvalidAmount:
		return "invalid_amount"
	case InvalidDate:
		return "invalid_date"
	case TooManyFields:
		return "too_many_fields"
	default:
		return "unknown"
	}
}

var (
	ErrTooFewFields  = errors.New("too few fields")
	ErrInvalidDate   = errors.New("invalid date")
	ErrTooManyFields = errors.New("too many fields")
)

// ParseError is returned by Parser.Parse when the text is not an expense.
type ParseError struct {
	Kind  ParseErrorKind
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse expense %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DateFallback decides what happens to a trailing date token that is not DD/MM/YYYY.
type DateFallback int

const (
	// FallbackToSubmission records the entry on the submission date.
	FallbackToSubmission DateFallback = iota
	// RejectMalformedDate fails the parse with InvalidDate.
	RejectMalformedDate
)

// ParseDateFallback reads the configuration spelling of a DateFallback.
func ParseDateFallback(s string) (DateFallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "submission":
		return FallbackToSubmission, nil
	case "reject":
		return RejectMalformedDate, nil
	default:
		return 0, fmt.Errorf("unknown date fallback %q: must be 'submission' or 'reject'", s)
	}
}

func (f DateFallback) String() string {
	if f == RejectMalformedDate {
		return "reject"
	}
	return "submission"
}

type ParserOptions struct {
	DateFallback DateFallback
}

// Parser turns chat text into Records. It holds no state besides its options.
type Parser struct {
	opts ParserOptions
}

func NewParser(opts ParserOptions) *Parser {
	return &Parser{opts: opts}
}

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

const dateLayout = "02/01/2006"

// Parse accepts
//
//	<amount> <category> <method>
//	<amount> <category> <method> <DD/MM/YYYY>
//	<amount>; <category>; <method>[; <DD/MM/YYYY>]
//
// In the whitespace form with more than four tokens the last token is the date
// and the tokens between category and date form the method. The semicolon form
// takes at most four fields. OccurredOn defaults to the calendar day of submitted.
func (p *Parser) Parse(owner OwnerID, raw string, submitted time.Time) (Record, error) {
	text := strings.TrimSpace(raw)

	var fields []string
	semicolon := strings.Contains(text, ";")
	if semicolon {
		for _, f := range strings.Split(text, ";") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	} else {
		fields = strings.Fields(text)
	}
	if len(fields) < 3 {
		return Record{}, &ParseError{Kind: TooFewFields, Input: raw, Err: ErrTooFewFields}
	}
	if semicolon && len(fields) > 4 {
		return Record{}, &ParseError{Kind: TooManyFields, Input: raw, Err: ErrTooManyFields}
	}

	amount, err := ParseAmount(fields[0])
	if err != nil {
		return Record{}, &ParseError{Kind: InvalidAmount, Input: raw, Err: err}
	}

	method := fields[2]
	dateToken := ""
	switch {
	case len(fields) == 4:
		dateToken = fields[3]
	case len(fields) > 4:
		method = strings.Join(fields[2:len(fields)-1], " ")
		dateToken = fields[len(fields)-1]
	}

	occurred := DateOf(submitted)
	if dateToken != "" {
		d, ok := parseDateToken(dateToken)
		switch {
		case ok:
			occurred = d
		case p.opts.DateFallback == RejectMalformedDate:
			return Record{}, &ParseError{Kind: InvalidDate, Input: raw, Err: ErrInvalidDate}
		}
	}

	rec := Record{
		OwnerID:    owner,
		Amount:     amount,
		Category:   strings.TrimSpace(fields[1]),
		Method:     strings.TrimSpace(method),
		OccurredOn: occurred,
	}
	return rec, nil
}

func parseDateToken(s string) (Date, bool) {
	if !datePattern.MatchString(s) {
		return Date{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, false
	}
	return DateOf(t), true
}

// ParseDisplayDate parses the DD/MM/YYYY form users type.
func ParseDisplayDate(s string) (Date, error) {
	d, ok := parseDateToken(strings.TrimSpace(s))
	if !ok {
		return Date{}, ErrInvalidDate
	}
	return d, nil
}
