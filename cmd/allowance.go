package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/Mohsinsiddi/w3dash/internal/ui"
	"github.com/spf13/cobra"
)

var allowanceWallet string

var allowanceCmd = &cobra.Command{
	Use:   "allowance <token> <spender>",
	Short: "Show a spender's allowance",
	Long: `Read the allowance the connected account has granted a spender.

Examples:
  w3dash allowance USDC 0xSpender...
  w3dash allowance DAI 0xSpender... --wallet mywallet`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sym := token.Symbol(strings.ToUpper(args[0]))
		spender := args[1]
		if err := token.ValidateAddress(spender); err != nil {
			return fmt.Errorf("invalid spender: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.log.Sync() //nolint:errcheck

		if _, err := a.connect(allowanceWallet); err != nil {
			return err
		}

		t, err := a.tokens.Get(sym)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Reading allowance...")
		spin.Start()
		raw, err := a.client.GetAllowance(ctx, t.Address, a.sess.Account(), spender)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(
			fmt.Sprintf("%s Allowance", sym),
			[][2]string{
				{"Owner", ui.TruncateAddr(a.sess.Account())},
				{"Spender", ui.TruncateAddr(spender)},
				{"Amount", token.FormatUnits(raw, t.Decimals) + " " + string(sym)},
			},
		))
		return nil
	},
}

func init() {
	allowanceCmd.Flags().StringVar(&allowanceWallet, "wallet", "", "wallet name or address")
}
