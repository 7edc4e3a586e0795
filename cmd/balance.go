package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/ui"
	"github.com/spf13/cobra"
)

var balanceWallet string

var balanceCmd = &cobra.Command{
	Use:   "balance [wallet-name-or-address]",
	Short: "Show tracked token balances",
	Long: `Fetch the confirmed balance of every tracked token for a wallet.

Examples:
  w3dash balance                  # default wallet
  w3dash balance mywallet
  w3dash balance 0xABC...`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && balanceWallet == "" {
			balanceWallet = args[0]
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.log.Sync() //nolint:errcheck

		if _, err := a.connect(balanceWallet); err != nil {
			return err
		}

		spin := ui.NewSpinner("Fetching balances...")
		spin.Start()
		err = a.balances.Fetch(ctx, a.sess.Account())
		spin.Stop()
		if err != nil {
			return err
		}

		tbl := ui.NewTable([]ui.Column{
			{Title: "Token", Width: 8},
			{Title: "Balance", Width: 28},
		})
		for _, t := range a.tokens.All() {
			b := a.balances.Balance(t.Symbol)
			tbl.AddRow(string(t.Symbol), b.Confirmed)
		}
		fmt.Println(ui.Meta("Account: ") + ui.Addr(a.sess.Account()))
		fmt.Print(tbl.Render())
		return nil
	},
}

func init() {
	balanceCmd.Flags().StringVar(&balanceWallet, "wallet", "", "wallet name or address")
}
