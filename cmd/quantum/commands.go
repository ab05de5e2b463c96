package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/quantum/internal/app"
	"github.com/bobmcallan/quantum/internal/common"
)

type options struct {
	configPath string
	userID     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "quantum",
		Short:         "Portfolio valuation and risk classification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: QUANTUM_CONFIG or quantum.toml)")
	root.PersistentFlags().StringVarP(&opts.userID, "user", "u", common.DefaultUserID, "user whose portfolio to operate on")

	root.AddCommand(
		newSummaryCmd(opts),
		newRefreshCmd(opts),
		newTriggerCmd(opts),
		newVersionCmd(),
	)
	return root
}

// withApp builds the app, runs fn with a user-scoped context, then closes it.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.NewApp(opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := common.WithUserContext(cmd.Context(), &common.UserContext{UserID: opts.userID})
	return fn(ctx, a)
}

func newSummaryCmd(opts *options) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the portfolio valuation and rebalance alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				dashboard, err := a.PortfolioService.GetDashboard(ctx, refresh)
				if err != nil {
					return err
				}
				return writeDashboard(cmd.OutOrStdout(), dashboard)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", true, "refresh stale snapshots first (--refresh=false to skip)")
	return cmd
}

func newRefreshCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch market snapshots for stale positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				_, summary, err := a.PortfolioService.RefreshPositions(ctx, force)
				if err != nil {
					return err
				}
				writeRefreshSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore the freshness policy")
	return cmd
}

func newTriggerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Dispatch the risk-parity analytics workflow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if a.Analytics == nil {
					return errors.New("analytics workflow is not configured")
				}
				if err := a.Analytics.Trigger(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Analytics workflow dispatched")
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			common.LoadVersionFromFile()
			fmt.Fprintf(cmd.OutOrStdout(), "quantum %s\n", common.GetFullVersion())
		},
	}
}
