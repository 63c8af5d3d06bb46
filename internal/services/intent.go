package services

import (
	"time"

	"gastos/internal/core"
	"gastos/internal/query"
)

// Intent is what a chat message asks the ledger to do. Transports map
// commands and phrases to an Intent before calling LedgerService.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentHelp
	IntentRecordExpense
	IntentGetTotal
	IntentGetTotalForMonth
	IntentGetTotalForCategory
	IntentGetTotalForMethod
	IntentGetTopCategory
	IntentGetBreakdownChartForMonth
	IntentGetSummary
	IntentGetMethodChart
)

var intentNames = map[Intent]string{
	IntentUnknown:                   "unknown",
	IntentHelp:                      "help",
	IntentRecordExpense:             "record_expense",
	IntentGetTotal:                  "get_total",
	IntentGetTotalForMonth:          "get_total_for_month",
	IntentGetTotalForCategory:       "get_total_for_category",
	IntentGetTotalForMethod:         "get_total_for_method",
	IntentGetTopCategory:            "get_top_category",
	IntentGetBreakdownChartForMonth: "get_breakdown_chart_for_month",
	IntentGetSummary:                "get_summary",
	IntentGetMethodChart:            "get_method_chart",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return "unknown"
}

// Request is one owner's message after routing.
type Request struct {
	Intent Intent
	Owner  core.OwnerID
	// Text is the raw expense entry for IntentRecordExpense.
	Text string
	// Arg is the category, method or MM/YYYY month for argument-taking intents.
	Arg   string
	Match query.MatchMode
	// SubmittedAt is when the message was sent; it dates expenses without a date token.
	SubmittedAt time.Time
}

// Reply is what the transport sends back. Chart, when set, is a PNG image
// and Text its caption.
type Reply struct {
	Text  string
	Chart []byte
}

// HasChart reports whether the reply carries an image.
func (r Reply) HasChart() bool {
	return len(r.Chart) > 0
}
