package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gastos/internal/chart"
	"gastos/internal/core"
	"gastos/internal/query"
	"gastos/internal/services"
)

func (a *app) recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <amount> <category> <method...> [DD/MM/YYYY]",
		Short: "Append an expense, in the same format the bot accepts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printReply(cmd, services.Request{
				Intent: services.IntentRecordExpense,
				Text:   strings.Join(args, " "),
			})
		},
	}
}

func (a *app) totalCmd() *cobra.Command {
	var month, category, method string
	var substring bool

	cmd := &cobra.Command{
		Use:   "total",
		Short: "Print the total spent, optionally for one month, category or method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := services.Request{Intent: services.IntentGetTotal}
			set := 0
			if month != "" {
				req.Intent, req.Arg = services.IntentGetTotalForMonth, month
				set++
			}
			if category != "" {
				req.Intent, req.Arg = services.IntentGetTotalForCategory, category
				set++
			}
			if method != "" {
				req.Intent, req.Arg = services.IntentGetTotalForMethod, method
				if substring {
					req.Match = query.MatchSubstring
				}
				set++
			}
			if set > 1 {
				return errors.New("use only one of --month, --category and --method")
			}
			return a.printReply(cmd, req)
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as MM/YYYY.")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name, matched case-insensitively.")
	cmd.Flags().StringVar(&method, "method", "", "Payment method, matched case-insensitively.")
	cmd.Flags().BoolVar(&substring, "substring", false, "Match --method as a substring of the stored method.")
	return cmd
}

func (a *app) topCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Print the category with the highest total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printReply(cmd, services.Request{Intent: services.IntentGetTopCategory})
		},
	}
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the total and the top category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printReply(cmd, services.Request{Intent: services.IntentGetSummary})
		},
	}
}

func (a *app) breakdownCmd() *cobra.Command {
	var month string
	var byMethod bool

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Print totals per category (or per method), largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.res.Backend.ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			owner := core.OwnerID(a.owner)

			var b core.Breakdown
			switch {
			case byMethod && month != "":
				return errors.New("--month applies to category breakdowns only")
			case byMethod:
				b = query.MethodBreakdown(records, owner)
			case month != "":
				m, err := query.ParseMonth(month)
				if err != nil {
					return err
				}
				if b, err = query.CategoryBreakdownInMonth(records, owner, m); err != nil {
					return err
				}
			default:
				b = query.CategoryBreakdown(records, owner)
			}

			slices, err := chart.BuildBreakdown(b)
			if errors.Is(err, chart.ErrEmptyBreakdown) {
				msg := services.MsgNothingToPlot
				if _, err := query.TopCategory(records, owner); errors.Is(err, query.ErrNoRecords) {
					msg = services.MsgNoRecords
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range slices {
				fmt.Fprintf(w, "%s\t%s\n", s.Label, core.FormatBRL(s.Value))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as MM/YYYY.")
	cmd.Flags().BoolVar(&byMethod, "by-method", false, "Group by payment method instead of category.")
	return cmd
}

func (a *app) chartCmd() *cobra.Command {
	var month, out string

	cmd := &cobra.Command{
		Use:       "chart categories|methods",
		Short:     "Render a breakdown chart to a PNG file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"categories", "methods"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := services.Request{Intent: services.IntentGetBreakdownChartForMonth, Arg: month}
			switch args[0] {
			case "categories":
			case "methods":
				req = services.Request{Intent: services.IntentGetMethodChart}
			default:
				return fmt.Errorf("unknown chart %q: want categories or methods", args[0])
			}

			reply, err := a.ask(cmd, req)
			if err != nil {
				return err
			}
			if !reply.HasChart() {
				fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
				return nil
			}
			if err := os.WriteFile(out, reply.Chart, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", reply.Text, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as MM/YYYY; defaults to the current month.")
	cmd.Flags().StringVarP(&out, "out", "o", "grafico.png", "Output PNG path.")
	return cmd
}
