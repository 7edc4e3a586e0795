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

var (
	historyWallet string
	historyToken  string
	historyType   string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history [wallet-name-or-address]",
	Short: "Show recent token events",
	Long: `List the account's recent mints, transfers, and approvals, newest first.
The query covers the configured block window of recent history.

Examples:
  w3dash history
  w3dash history --token USDC
  w3dash history --type transfer --limit 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && historyWallet == "" {
			historyWallet = args[0]
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.log.Sync() //nolint:errcheck

		if _, err := a.connect(historyWallet); err != nil {
			return err
		}

		spin := ui.NewSpinner("Querying event logs...")
		spin.Start()
		events, err := a.ingester.Fetch(ctx, a.sess.Account())
		spin.Stop()
		if err != nil {
			return err
		}

		events = filterEvents(events)
		if len(events) == 0 {
			fmt.Println(ui.Meta("No events in the recent window."))
			return nil
		}
		if historyLimit > 0 && len(events) > historyLimit {
			events = events[:historyLimit]
		}

		tbl := ui.NewTable([]ui.Column{
			{Title: "Type", Width: 10},
			{Title: "Token", Width: 6},
			{Title: "Amount", Width: 18},
			{Title: "From", Width: 13},
			{Title: "To", Width: 13},
			{Title: "Block", Width: 10},
			{Title: "Tx", Width: 14},
		})
		counts := make(map[store.EventType]int)
		for _, ev := range events {
			counts[ev.Type]++
			tbl.AddRow(
				string(ev.Type),
				string(ev.Token),
				ev.Amount,
				ui.TruncateAddr(ev.From),
				ui.TruncateAddr(ev.To),
				fmt.Sprintf("%d", ev.Block),
				ui.TruncateAddr(ev.TxHash),
			)
		}
		fmt.Print(tbl.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("mints %d · transfers %d · approvals %d",
			counts[store.EventMint], counts[store.EventTransfer], counts[store.EventApprove])))
		return nil
	},
}

func filterEvents(events []store.Event) []store.Event {
	if historyToken == "" && historyType == "" {
		return events
	}
	sym := token.Symbol(strings.ToUpper(historyToken))

	var out []store.Event
	for _, ev := range events {
		if historyToken != "" && ev.Token != sym {
			continue
		}
		if historyType != "" && !strings.EqualFold(string(ev.Type), historyType) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func init() {
	historyCmd.Flags().StringVar(&historyWallet, "wallet", "", "wallet name or address")
	historyCmd.Flags().StringVar(&historyToken, "token", "", "filter by token symbol")
	historyCmd.Flags().StringVar(&historyType, "type", "", "filter by event type (mint|transfer|approve)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "max events to show")
}
