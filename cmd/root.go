package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3dash/internal/config"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3dash/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command. Running it bare opens the dashboard.
var rootCmd = &cobra.Command{
	Use:   "w3dash",
	Short: "Testnet ERC-20 token dashboard",
	Long: `w3dash — terminal dashboard for the Sepolia test tokens.

  Watch DAI and USDC balances with instant optimistic updates, browse the
  account's mint/transfer/approval history, and submit token transactions
  that reconcile against the chain as they confirm.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// W3DASH_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("W3DASH_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3dash)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(
		dashboardCmd,
		balanceCmd,
		historyCmd,
		mintCmd,
		transferCmd,
		approveCmd,
		allowanceCmd,
		networkCmd,
		walletCmd,
	)
}
