package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gastos/internal/chart"
	"gastos/internal/core"
	"gastos/internal/ledger"
	applog "gastos/internal/log"
	"gastos/internal/query"
)

// Reply texts.
const (
	HelpText = "Olá! Envie gastos no formato:\n" +
		"15 mercado caixa\n" +
		"15 mercado caixa 01/11/2025\n" +
		"15; mercado; cartão caixa\n\n" +
		"Comandos:\n" +
		"/total - total gasto\n" +
		"/total_mes MM/AAAA - total do mês\n" +
		"/categoria <nome> - total da categoria\n" +
		"/meio <nome> - total do meio de pagamento\n" +
		"/top - categoria que mais gastou\n" +
		"/summary - total e categoria principal\n" +
		"/grafico_categorias [MM/AAAA] - gráfico por categoria\n" +
		"/grafico_meios - gráfico por meio de pagamento\n\n" +
		"Ou pergunte: \"quanto gastei no cartão\""

	MsgInvalidFormat = "Formato inválido, use: valor categoria meio (ex: 15 mercado caixa)"
	MsgInvalidDate   = "Data inválida, use DD/MM/AAAA (ex: 15 mercado caixa 01/11/2025)"
	MsgInvalidMonth  = "Mês inválido, use MM/AAAA (ex: 11/2025)"
	MsgMissingArg    = "Informe o que consultar (ex: /categoria mercado)"
	MsgNoRecords     = "Nenhum gasto registrado ainda."
	MsgNothingToPlot = "Nenhum gasto para gerar gráfico."
	MsgStoreDown     = "Não consegui acessar a planilha agora, tente novamente em instantes."
	MsgChartFailed   = "Não consegui gerar o gráfico."
	MsgUnknown       = "Não entendi. Envie /start para ver os formatos aceitos."
)

// ChartRenderer turns chart slices into PNG images.
type ChartRenderer interface {
	Pie(title string, slices []chart.Slice) ([]byte, error)
	Bar(title string, slices []chart.Slice) ([]byte, error)
}

// LedgerService answers routed chat requests from the ledger store. It keeps
// no ledger state: every query reads the store again.
type LedgerService struct {
	store    ledger.Store
	parser   *core.Parser
	renderer ChartRenderer
	logger   *applog.StructuredLogger
}

func NewLedgerService(store ledger.Store, parser *core.Parser, renderer ChartRenderer, logger *applog.Logger) *LedgerService {
	if parser == nil {
		parser = core.NewParser(core.ParserOptions{})
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerService{
		store:    store,
		parser:   parser,
		renderer: renderer,
		logger:   applog.NewStructuredLogger(logger.WithComponent(applog.ComponentLedger)),
	}
}

// Handle executes req. User mistakes and empty results come back as a reply
// with a nil error; the error is set only for store and rendering failures,
// and the reply then holds a text to show the user anyway.
func (s *LedgerService) Handle(ctx context.Context, req Request) (Reply, error) {
	switch req.Intent {
	case IntentHelp:
		return Reply{Text: HelpText}, nil
	case IntentRecordExpense:
		return s.record(ctx, req)
	case IntentGetTotal,
		IntentGetTotalForMonth,
		IntentGetTotalForCategory,
		IntentGetTotalForMethod,
		IntentGetTopCategory,
		IntentGetSummary,
		IntentGetBreakdownChartForMonth,
		IntentGetMethodChart:
		records, err := s.store.ReadAll(ctx)
		if err != nil {
			s.logger.LogError(ctx, "Failed to read ledger", err, applog.ComponentLedger, applog.OpRead,
				applog.NewFields().WithOwner(req.Owner).WithIntent(req.Intent.String()))
			return Reply{Text: MsgStoreDown}, fmt.Errorf("read ledger: %w", err)
		}
		return s.answer(ctx, req, records)
	default:
		return Reply{Text: MsgUnknown}, nil
	}
}

func (s *LedgerService) record(ctx context.Context, req Request) (Reply, error) {
	rec, err := s.parser.Parse(req.Owner, req.Text, req.SubmittedAt)
	if err != nil {
		var pe *core.ParseError
		if errors.As(err, &pe) && pe.Kind == core.InvalidDate {
			return Reply{Text: MsgInvalidDate}, nil
		}
		return Reply{Text: MsgInvalidFormat}, nil
	}

	if err := s.store.Append(ctx, rec); err != nil {
		if !errors.Is(err, ledger.ErrStore) {
			return Reply{Text: MsgInvalidFormat}, nil
		}
		s.logger.LogError(ctx, "Failed to append record", err, applog.ComponentLedger, applog.OpAppend,
			applog.NewFields().WithRecord(rec))
		return Reply{Text: MsgStoreDown}, fmt.Errorf("append record: %w", err)
	}
	s.logger.LogRecordAppended(ctx, rec)

	return Reply{Text: fmt.Sprintf("Registrado: %s | %s | %s | %s",
		core.FormatBRL(rec.Amount), rec.Category, rec.Method, rec.OccurredOn.Display())}, nil
}

// answer evaluates a read-only intent over a ledger snapshot.
func (s *LedgerService) answer(ctx context.Context, req Request, records []core.Record) (Reply, error) {
	owner := req.Owner
	arg := strings.TrimSpace(req.Arg)

	switch req.Intent {
	case IntentGetTotal:
		return Reply{Text: "Total gasto: " + core.FormatBRL(query.Total(records, owner))}, nil

	case IntentGetTotalForMonth:
		month, err := query.ParseMonth(arg)
		if err != nil {
			return Reply{Text: MsgInvalidMonth}, nil
		}
		total, err := query.TotalInMonth(records, owner, month)
		if err != nil {
			return Reply{Text: MsgInvalidMonth}, nil
		}
		return Reply{Text: fmt.Sprintf("Total em %s: %s", month, core.FormatBRL(total))}, nil

	case IntentGetTotalForCategory:
		total, err := query.TotalByCategory(records, owner, arg)
		if err != nil {
			return Reply{Text: MsgMissingArg}, nil
		}
		return Reply{Text: fmt.Sprintf("Total em %s: %s", arg, core.FormatBRL(total))}, nil

	case IntentGetTotalForMethod:
		total, err := query.TotalByMethod(records, owner, arg, req.Match)
		if err != nil {
			return Reply{Text: MsgMissingArg}, nil
		}
		return Reply{Text: fmt.Sprintf("Total pago com %s: %s", arg, core.FormatBRL(total))}, nil

	case IntentGetTopCategory:
		top, err := query.TopCategory(records, owner)
		if errors.Is(err, query.ErrNoRecords) {
			return Reply{Text: MsgNoRecords}, nil
		}
		return Reply{Text: "Categoria que mais gastou: " + top}, nil

	case IntentGetSummary:
		sum, err := query.Summarize(records, owner)
		if errors.Is(err, query.ErrNoRecords) {
			return Reply{Text: MsgNoRecords}, nil
		}
		return Reply{Text: fmt.Sprintf("Total gasto: %s\nCategoria que mais gastou: %s",
			core.FormatBRL(sum.Total), sum.TopCategory)}, nil

	case IntentGetBreakdownChartForMonth:
		month := query.MonthOf(req.SubmittedAt)
		if arg != "" {
			m, err := query.ParseMonth(arg)
			if err != nil {
				return Reply{Text: MsgInvalidMonth}, nil
			}
			month = m
		}
		breakdown, err := query.CategoryBreakdownInMonth(records, owner, month)
		if err != nil {
			return Reply{Text: MsgInvalidMonth}, nil
		}
		return s.chart(ctx, req.Owner, breakdown, "Gasto por Categoria - "+month.String(), s.renderer.Pie)

	case IntentGetMethodChart:
		return s.chart(ctx, owner, query.MethodBreakdown(records, owner), "Gasto por Meio de Pagamento", s.renderer.Bar)
	}
	return Reply{Text: MsgUnknown}, nil
}

func (s *LedgerService) chart(ctx context.Context, owner core.OwnerID, b core.Breakdown, title string, render func(string, []chart.Slice) ([]byte, error)) (Reply, error) {
	slices, err := chart.BuildBreakdown(b)
	if errors.Is(err, chart.ErrEmptyBreakdown) {
		return Reply{Text: MsgNothingToPlot}, nil
	}
	img, err := render(title, slices)
	if err != nil {
		s.logger.LogError(ctx, "Failed to render chart", err, applog.ComponentLedger, applog.OpRender,
			applog.NewFields().WithOwner(owner))
		return Reply{Text: MsgChartFailed}, fmt.Errorf("render %q: %w", title, err)
	}
	return Reply{Text: title, Chart: img}, nil
}
