package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/spf13/cobra"
)

var transferWallet string

var transferCmd = &cobra.Command{
	Use:   "transfer <token> <recipient> <amount>",
	Short: "Transfer tokens to another address",
	Long: `Transfer tokens from the connected account to a recipient.

Examples:
  w3dash transfer USDC 0xABC... 25
  w3dash transfer DAI 0xABC... 1.5 --wallet mywallet`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(transferWallet, func(ctx context.Context, w *writeContext) (string, error) {
			return w.orch.Transfer(ctx, token.Symbol(strings.ToUpper(args[0])), args[1], args[2])
		}, fmt.Sprintf("Transferring %s %s...", args[2], strings.ToUpper(args[0])))
	},
}

func init() {
	transferCmd.Flags().StringVar(&transferWallet, "wallet", "", "signing wallet name")
}
