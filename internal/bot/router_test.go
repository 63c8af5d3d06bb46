package bot

import (
	"testing"
	"time"

	"gastos/internal/query"
	"gastos/internal/services"
)

func TestRoute(t *testing.T) {
	submitted := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		text   string
		intent services.Intent
		arg    string
		match  query.MatchMode
	}{
		{name: "start", text: "/start", intent: services.IntentHelp},
		{name: "help", text: "/help", intent: services.IntentHelp},
		{name: "total", text: "/total", intent: services.IntentGetTotal},
		{name: "total with bot suffix", text: "/total@gastos_bot", intent: services.IntentGetTotal},
		{name: "total for month", text: "/total_mes 11/2025", intent: services.IntentGetTotalForMonth, arg: "11/2025"},
		{name: "total for month without arg", text: "/total_mes", intent: services.IntentGetTotalForMonth},
		{name: "category keeps case", text: "/categoria Mercado", intent: services.IntentGetTotalForCategory, arg: "Mercado"},
		{name: "method is exact", text: "/meio cartão caixa", intent: services.IntentGetTotalForMethod, arg: "cartão caixa", match: query.MatchExact},
		{name: "top", text: "/top", intent: services.IntentGetTopCategory},
		{name: "summary", text: "/summary", intent: services.IntentGetSummary},
		{name: "resumo", text: "/resumo", intent: services.IntentGetSummary},
		{name: "category chart", text: "/grafico_categorias", intent: services.IntentGetBreakdownChartForMonth},
		{name: "category chart for month", text: "/grafico_categorias 10/2025", intent: services.IntentGetBreakdownChartForMonth, arg: "10/2025"},
		{name: "method chart", text: "/grafico_meios", intent: services.IntentGetMethodChart},
		{name: "unknown command", text: "/deletar", intent: services.IntentUnknown},
		{name: "expense", text: "15 mercado caixa", intent: services.IntentRecordExpense},
		{name: "expense with semicolons", text: "15,50; mercado; cartão caixa", intent: services.IntentRecordExpense},
		{name: "free text goes to parser", text: "olá", intent: services.IntentRecordExpense},
		{name: "phrase total", text: "Quanto gastei?", intent: services.IntentGetTotal},
		{name: "phrase method substring", text: "quanto gastei no cartão", intent: services.IntentGetTotalForMethod, arg: "cartão", match: query.MatchSubstring},
		{name: "phrase method com", text: "quanto gastei com pix", intent: services.IntentGetTotalForMethod, arg: "pix", match: query.MatchSubstring},
		{name: "phrase month", text: "quanto gastei em 10/2025", intent: services.IntentGetTotalForMonth, arg: "10/2025"},
		{name: "phrase category", text: "quanto gastei em mercado", intent: services.IntentGetTotalForCategory, arg: "mercado"},
		{name: "phrase top", text: "onde mais gastei?", intent: services.IntentGetTopCategory},
		{name: "phrase breakdown", text: "total por categoria", intent: services.IntentGetBreakdownChartForMonth},
		{name: "phrase gasto no", text: "gasto no caixa", intent: services.IntentGetTotalForMethod, arg: "caixa", match: query.MatchSubstring},
		{name: "bare gasto is an expense", text: "gasto", intent: services.IntentRecordExpense},
		{name: "phrase resumo", text: "resumo", intent: services.IntentGetSummary},
		{name: "phrase category chart", text: "gráfico categorias 10/2025", intent: services.IntentGetBreakdownChartForMonth, arg: "10/2025"},
		{name: "phrase method chart", text: "grafico meios", intent: services.IntentGetMethodChart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Route(42, tt.text, submitted)
			if req.Intent != tt.intent {
				t.Errorf("Route(%q).Intent = %v, want %v", tt.text, req.Intent, tt.intent)
			}
			if req.Arg != tt.arg {
				t.Errorf("Route(%q).Arg = %q, want %q", tt.text, req.Arg, tt.arg)
			}
			if req.Match != tt.match {
				t.Errorf("Route(%q).Match = %v, want %v", tt.text, req.Match, tt.match)
			}
			if req.Owner != 42 || !req.SubmittedAt.Equal(submitted) || req.Text != tt.text {
				t.Errorf("Route(%q) lost request context: %+v", tt.text, req)
			}
		})
	}
}
