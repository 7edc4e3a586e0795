package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/rpc"
	"github.com/Mohsinsiddi/w3dash/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect and manage the RPC endpoints",
}

var networkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the configured RPC endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		picker := rpc.NewPicker(cfg.RPCs, cfg.RequiredChainID, nil)

		spin := ui.NewSpinner("Probing RPC endpoints...")
		spin.Start()
		endpoints := picker.Probe(ctx)
		spin.Stop()

		tbl := ui.NewTable([]ui.Column{
			{Title: "Endpoint", Width: 48},
			{Title: "Chain", Width: 10},
			{Title: "Block", Width: 10},
			{Title: "Latency", Width: 10},
			{Title: "Status", Width: 10},
		})
		for _, e := range endpoints {
			status := ui.StyleSuccess.Render("healthy")
			switch {
			case !e.Healthy:
				status = ui.StyleError.Render("down")
			case e.ChainID != cfg.RequiredChainID:
				status = ui.StyleWarning.Render("wrong chain")
			}
			tbl.AddRow(
				e.URL,
				fmt.Sprintf("%d", e.ChainID),
				fmt.Sprintf("%d", e.BlockNumber),
				e.Latency.Round(time.Millisecond).String(),
				status,
			)
		}
		fmt.Println(ui.Meta(fmt.Sprintf("Required chain: %d", cfg.RequiredChainID)))
		fmt.Print(tbl.Render())
		return nil
	},
}

var networkAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <url>",
	Short: "Add an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Added " + args[0]))
		return nil
	},
}

var networkRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <url>",
	Short: "Remove an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRPC(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Removed " + args[0]))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkStatusCmd, networkAddRPCCmd, networkRemoveRPCCmd)
}
