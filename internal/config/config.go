package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Mohsinsiddi/w3dash/internal/token"
)

const (
	// Sepolia, the only chain the dashboard's test tokens live on.
	defaultChainID     = 11155111
	defaultExplorerURL = "https://sepolia.etherscan.io"

	defaultHistoryWindow  = 10_000
	defaultReceiptTimeout = 180

	configFile  = "config.json"
	walletsFile = "wallets.json"
	logFile     = "w3dash.log"
)

var defaultRPCs = []string{
	"https://ethereum-sepolia-rpc.publicnode.com",
	"https://rpc.sepolia.org",
	"https://sepolia.drpc.org",
}

var defaultTokens = []TokenConfig{
	{Symbol: string(token.DAI), Address: "0x1D70D57ccD2798323232B2dD027B3aBcA5C00091", Decimals: 18},
	{Symbol: string(token.USDC), Address: "0xC891481A0AaC630F4D89744ccD2C7D2C4215FD47", Decimals: 6},
}

// TokenConfig is one tracked ERC-20 token.
type TokenConfig struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

// Config holds the dashboard's persisted settings.
type Config struct {
	RPCs                []string      `json:"rpcs"`
	RequiredChainID     int64         `json:"required_chain_id"`
	ExplorerURL         string        `json:"explorer_url"`
	Tokens              []TokenConfig `json:"tokens"`
	DefaultWallet       string        `json:"default_wallet,omitempty"`
	HistoryWindowBlocks uint64        `json:"history_window_blocks"`
	ReceiptTimeoutSecs  int           `json:"receipt_timeout_secs"`

	configDir string
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3dash.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3dash")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Registry builds the token registry from the configured tokens.
func (c *Config) Registry() (*token.Registry, error) {
	toks := make([]token.Token, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		toks = append(toks, token.Token{
			Symbol:   token.Symbol(t.Symbol),
			Address:  t.Address,
			Decimals: t.Decimals,
		})
	}
	return token.NewRegistry(toks)
}

// AddRPC appends a custom RPC endpoint.
func (c *Config) AddRPC(url string) error {
	if slices.Contains(c.RPCs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.RPCs = append(c.RPCs, url)
	return nil
}

// RemoveRPC drops an RPC endpoint.
func (c *Config) RemoveRPC(url string) error {
	idx := slices.Index(c.RPCs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found", url)
	}
	c.RPCs = slices.Delete(c.RPCs, idx, idx+1)
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet manager persists its metadata.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// LogPath is where the file logger writes. The TUI owns stdout, so logs go
// to a file.
func (c *Config) LogPath() string {
	return filepath.Join(c.configDir, logFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		RPCs:                slices.Clone(defaultRPCs),
		RequiredChainID:     defaultChainID,
		ExplorerURL:         defaultExplorerURL,
		Tokens:              slices.Clone(defaultTokens),
		HistoryWindowBlocks: defaultHistoryWindow,
		ReceiptTimeoutSecs:  defaultReceiptTimeout,
		configDir:           dir,
	}
}

// fillDefaults patches zero values in a hand-edited config file.
func (c *Config) fillDefaults() {
	if len(c.RPCs) == 0 {
		c.RPCs = slices.Clone(defaultRPCs)
	}
	if c.RequiredChainID == 0 {
		c.RequiredChainID = defaultChainID
	}
	if c.ExplorerURL == "" {
		c.ExplorerURL = defaultExplorerURL
	}
	if len(c.Tokens) == 0 {
		c.Tokens = slices.Clone(defaultTokens)
	}
	if c.HistoryWindowBlocks == 0 {
		c.HistoryWindowBlocks = defaultHistoryWindow
	}
	if c.ReceiptTimeoutSecs == 0 {
		c.ReceiptTimeoutSecs = defaultReceiptTimeout
	}
}
