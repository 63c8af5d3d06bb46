package bot

import (
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/query"
	"gastos/internal/services"
)

// Slash commands. Arguments follow the command separated by whitespace.
const (
	CmdStart         = "start"
	CmdHelp          = "help"
	CmdTotal         = "total"
	CmdTotalMonth    = "total_mes"
	CmdCategory      = "categoria"
	CmdMethod        = "meio"
	CmdTop           = "top"
	CmdSummary       = "summary"
	CmdSummaryPT     = "resumo"
	CmdCategoryChart = "grafico_categorias"
	CmdMethodChart   = "grafico_meios"
)

var commandIntents = map[string]services.Intent{
	CmdStart:         services.IntentHelp,
	CmdHelp:          services.IntentHelp,
	CmdTotal:         services.IntentGetTotal,
	CmdTotalMonth:    services.IntentGetTotalForMonth,
	CmdCategory:      services.IntentGetTotalForCategory,
	CmdMethod:        services.IntentGetTotalForMethod,
	CmdTop:           services.IntentGetTopCategory,
	CmdSummary:       services.IntentGetSummary,
	CmdSummaryPT:     services.IntentGetSummary,
	CmdCategoryChart: services.IntentGetBreakdownChartForMonth,
	CmdMethodChart:   services.IntentGetMethodChart,
}

// Prepositions after "quanto gastei" or "gasto". Method phrasing ("no cartão") matches by
// substring; "em"/"de" take a month or a category.
var (
	methodPrepositions = []string{"no", "na", "nos", "nas", "com", "pelo", "pela"}
	otherPrepositions  = []string{"em", "de", "do", "da"}
)

// Route maps one chat message to a ledger request. Slash commands are routed
// by name; a few fixed Portuguese phrases are recognized; anything else is
// taken as an expense entry and left for the parser to accept or reject.
func Route(owner core.OwnerID, text string, submitted time.Time) services.Request {
	req := services.Request{
		Intent:      services.IntentUnknown,
		Owner:       owner,
		Text:        text,
		Match:       query.MatchExact,
		SubmittedAt: submitted,
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		name, arg := splitCommand(trimmed)
		if intent, ok := commandIntents[name]; ok {
			req.Intent = intent
			req.Arg = arg
		}
		return req
	}

	if intent, arg, match, ok := routePhrase(trimmed); ok {
		req.Intent = intent
		req.Arg = arg
		req.Match = match
		return req
	}

	req.Intent = services.IntentRecordExpense
	return req
}

// splitCommand turns "/total_mes@gastos_bot 11/2025" into ("total_mes", "11/2025").
func splitCommand(text string) (string, string) {
	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.Join(fields[1:], " ")
}

func routePhrase(text string) (services.Intent, string, query.MatchMode, bool) {
	lower := strings.ToLower(strings.Join(strings.Fields(text), " "))
	lower = strings.TrimRight(lower, "?!. ")

	switch lower {
	case "total", "quanto gastei":
		return services.IntentGetTotal, "", query.MatchExact, true
	case "resumo":
		return services.IntentGetSummary, "", query.MatchExact, true
	case "top", "categoria que mais gastei", "onde mais gastei":
		return services.IntentGetTopCategory, "", query.MatchExact, true
	case "grafico meios", "gráfico meios":
		return services.IntentGetMethodChart, "", query.MatchExact, true
	}

	for _, prefix := range []string{"grafico categorias", "gráfico categorias", "total por categoria"} {
		if rest, ok := cutWord(lower, prefix); ok {
			return services.IntentGetBreakdownChartForMonth, rest, query.MatchExact, true
		}
	}

	var rest string
	found := false
	for _, prefix := range []string{"quanto gastei", "gasto", "gastos"} {
		if r, ok := cutWord(lower, prefix); ok {
			rest, found = r, true
			break
		}
	}
	if !found {
		return services.IntentUnknown, "", query.MatchExact, false
	}
	for _, p := range methodPrepositions {
		if arg, ok := cutWord(rest, p); ok && arg != "" {
			return services.IntentGetTotalForMethod, arg, query.MatchSubstring, true
		}
	}
	for _, p := range otherPrepositions {
		if arg, ok := cutWord(rest, p); ok && arg != "" {
			if _, err := query.ParseMonth(arg); err == nil {
				return services.IntentGetTotalForMonth, arg, query.MatchExact, true
			}
			return services.IntentGetTotalForCategory, arg, query.MatchExact, true
		}
	}
	return services.IntentUnknown, "", query.MatchExact, false
}

// cutWord strips prefix from s when it is followed by a space or the end.
func cutWord(s, prefix string) (string, bool) {
	if s == prefix {
		return "", true
	}
	if strings.HasPrefix(s, prefix+" ") {
		return strings.TrimSpace(s[len(prefix)+1:]), true
	}
	return "", false
}
