package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/spf13/cobra"
)

var approveWallet string

var approveCmd = &cobra.Command{
	Use:   "approve <token> <spender> <amount>",
	Short: "Grant a spender an allowance",
	Long: `Approve a spender to move tokens on the connected account's behalf.
Approvals do not change the balance.

Examples:
  w3dash approve USDC 0xSpender... 500
  w3dash approve DAI 0xSpender... 100 --wallet mywallet`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(approveWallet, func(ctx context.Context, w *writeContext) (string, error) {
			return w.orch.Approve(ctx, token.Symbol(strings.ToUpper(args[0])), args[1], args[2])
		}, fmt.Sprintf("Approving %s %s...", args[2], strings.ToUpper(args[0])))
	},
}

func init() {
	approveCmd.Flags().StringVar(&approveWallet, "wallet", "", "signing wallet name")
}
