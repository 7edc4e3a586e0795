package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/Mohsinsiddi/w3dash/internal/ui"
	"github.com/Mohsinsiddi/w3dash/internal/wallet"
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a signing wallet",
	Long: `Add a signing wallet from a private key. The key is prompted
interactively and stored in the OS keychain, never on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexKey := ui.PromptInput("Private key (hex)")
		if hexKey == "" {
			return fmt.Errorf("no key provided")
		}

		mgr := newWalletManager()
		if err := mgr.AddWithKey(args[0], hexKey); err != nil {
			return err
		}
		w, _ := mgr.Get(args[0])
		fmt.Println(ui.Success(fmt.Sprintf("Added signing wallet %q (%s)", args[0], ui.TruncateAddr(w.Address))))
		return nil
	},
}

var walletAddWatchCmd = &cobra.Command{
	Use:   "add-watch <name> <address>",
	Short: "Add a watch-only wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := token.ValidateAddress(args[1]); err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
		mgr := newWalletManager()
		if err := mgr.AddWatchOnly(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added watch-only wallet %q", args[0])))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets := newWalletManager().List()
		if len(wallets) == 0 {
			fmt.Println(ui.Meta("No wallets configured. Add one with `w3dash wallet add <name>`."))
			return nil
		}

		tbl := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
			}
			tbl.AddRow(w.Name, w.Address, w.Type, def)
		}
		fmt.Print(tbl.Render())
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		if err := mgr.SetDefault(args[0]); err != nil {
			return err
		}
		cfg.DefaultWallet = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet is now %q", args[0])))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		w, err := mgr.Get(args[0])
		if err != nil {
			return err
		}
		if w.Type == wallet.TypeSigning && !ui.Confirm(fmt.Sprintf("Remove signing wallet %q and its key?", args[0])) {
			fmt.Println(ui.Meta("Aborted."))
			return nil
		}
		if err := mgr.Remove(args[0]); err != nil {
			return err
		}
		if cfg.DefaultWallet == args[0] {
			cfg.DefaultWallet = ""
			cfg.Save() //nolint:errcheck
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed wallet %q", args[0])))
		return nil
	},
}

func init() {
	walletCmd.AddCommand(walletAddCmd, walletAddWatchCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
