package cmd

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/ui"
	"github.com/spf13/cobra"
)

var dashboardWallet string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [wallet-name-or-address]",
	Short: "Open the live token dashboard",
	Long: `Open the interactive dashboard: balances with optimistic updates and
the account's recent mint/transfer/approval history.

Examples:
  w3dash dashboard                # default wallet
  w3dash dashboard mywallet
  w3dash dashboard 0xABC...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && dashboardWallet == "" {
		dashboardWallet = args[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := newApp(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	if _, err := a.connect(dashboardWallet); err != nil {
		return err
	}

	prog := ui.NewDashboard(ui.DashboardDeps{
		Session:     a.sess,
		Balances:    a.balances,
		History:     a.history,
		Tokens:      a.tokens,
		Ingester:    a.ingester,
		ExplorerURL: cfg.ExplorerURL,
	})
	_, err = prog.Run()
	return err
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardWallet, "wallet", "", "wallet name or address")
}
