package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gastos/internal/backend"
	"gastos/internal/chart"
	"gastos/internal/config"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

// app holds what every subcommand needs once the backend is open.
type app struct {
	owner int64
	now   func() time.Time

	res *backend.BackendResult
	svc *services.LedgerService
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "gastosctl",
		Short:         "Record and query expenses in the gastos ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().Int64Var(&a.owner, "owner", 0, "Chat user id that owns the records.")
	_ = root.MarkPersistentFlagRequired("owner")

	root.AddCommand(
		a.recordCmd(),
		a.totalCmd(),
		a.topCmd(),
		a.summaryCmd(),
		a.breakdownCmd(),
		a.chartCmd(),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.owner <= 0 {
		return fmt.Errorf("--owner must be a positive chat user id")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so command output stays clean.
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    applog.ParseFormat(cfg.LogFormat),
		Output:    os.Stderr,
		Component: applog.ComponentCLI,
	})

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	a.res = res
	a.svc = services.NewLedgerService(res.Backend, core.NewParser(cfg.ParserOptions()), chart.DefaultRenderer(), logger)
	return nil
}

func (a *app) close() error {
	if a.res == nil {
		return nil
	}
	err := a.res.Close()
	a.res = nil
	return err
}

// ask runs one request through the ledger service as the --owner user.
func (a *app) ask(cmd *cobra.Command, req services.Request) (services.Reply, error) {
	req.Owner = core.OwnerID(a.owner)
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = a.now()
	}
	return a.svc.Handle(cmd.Context(), req)
}

func (a *app) printReply(cmd *cobra.Command, req services.Request) error {
	reply, err := a.ask(cmd, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}
