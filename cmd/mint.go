package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/store"
	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/Mohsinsiddi/w3dash/internal/ui"
	"github.com/spf13/cobra"
)

var mintWallet string

var mintCmd = &cobra.Command{
	Use:   "mint <token> <amount>",
	Short: "Mint test tokens to the connected account",
	Long: `Mint test tokens to the connected account. The test tokens on Sepolia
expose a public mint function, so anyone can top up.

Examples:
  w3dash mint DAI 100
  w3dash mint USDC 50 --wallet mywallet`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(mintWallet, func(ctx context.Context, w *writeContext) (string, error) {
			return w.orch.Mint(ctx, token.Symbol(strings.ToUpper(args[0])), args[1])
		}, fmt.Sprintf("Minting %s %s...", args[1], strings.ToUpper(args[0])))
	},
}

// writeContext carries the wired app and orchestrator into a write action.
type writeContext struct {
	app  *app
	orch orchAPI
}

// orchAPI is the slice of the orchestrator the commands call.
type orchAPI interface {
	Mint(ctx context.Context, sym token.Symbol, amount string) (string, error)
	Transfer(ctx context.Context, sym token.Symbol, recipient, amount string) (string, error)
	Approve(ctx context.Context, sym token.Symbol, spender, amount string) (string, error)
	Wait()
}

// runWrite wires the app, submits the action, and waits for its confirmation
// so the one-shot command reports the final outcome.
func runWrite(walletFlag string, action func(context.Context, *writeContext) (string, error), spinMsg string) error {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ReceiptTimeoutSecs+60)*time.Second)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	w, err := a.connect(walletFlag)
	if err != nil {
		return err
	}
	orch, err := a.orchestrator(w)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner(spinMsg)
	spin.Start()
	hash, err := action(ctx, &writeContext{app: a, orch: orch})
	if err != nil {
		spin.Stop()
		return err
	}
	spin.StopWithMsg(ui.Success("Submitted " + hash))

	spin = ui.NewSpinner("Waiting for confirmation...")
	spin.Start()
	orch.Wait()
	spin.Stop()

	for _, ev := range a.history.Events() {
		if ev.ID != hash {
			continue
		}
		switch {
		case ev.Status == store.StatusFailed:
			fmt.Println(ui.Err("Transaction failed: " + explorerTxURL(hash)))
			return fmt.Errorf("transaction %s failed", hash)
		default:
			fmt.Println(ui.Success("Confirmed: " + explorerTxURL(hash)))
		}
	}
	return nil
}

func init() {
	mintCmd.Flags().StringVar(&mintWallet, "wallet", "", "signing wallet name")
}
