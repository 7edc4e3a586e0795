package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/chain"
	"github.com/Mohsinsiddi/w3dash/internal/ingest"
	"github.com/Mohsinsiddi/w3dash/internal/rpc"
	"github.com/Mohsinsiddi/w3dash/internal/session"
	"github.com/Mohsinsiddi/w3dash/internal/store"
	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/Mohsinsiddi/w3dash/internal/tx"
	"github.com/Mohsinsiddi/w3dash/internal/wallet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the wired dashboard services for one command invocation.
type app struct {
	log      *zap.Logger
	client   *chain.EVMClient
	tokens   *token.Registry
	sess     *session.Session
	balances *store.BalanceStore
	history  *store.HistoryStore
	ingester *ingest.Ingester
	wallets  *wallet.Manager
}

// newApp picks an RPC endpoint, probes the chain, and wires the stores.
func newApp(ctx context.Context) (*app, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	tokens, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("invalid token config: %w", err)
	}

	picker := rpc.NewPicker(cfg.RPCs, cfg.RequiredChainID, logger)
	url, err := picker.Pick(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting RPC: %w", err)
	}
	client := chain.NewEVMClient(url)

	sess := session.NewSession(cfg.RequiredChainID)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	sess.SetChainID(chainID)

	balances := store.NewBalanceStore(client, tokens)
	history := store.NewHistoryStore()
	ingester := ingest.NewIngester(client, tokens, history, cfg.HistoryWindowBlocks, logger)

	return &app{
		log:      logger,
		client:   client,
		tokens:   tokens,
		sess:     sess,
		balances: balances,
		history:  history,
		ingester: ingester,
		wallets:  newWalletManager(),
	}, nil
}

// connect resolves the wallet flag (name, address, or empty for the default
// wallet) and sets the session account.
func (a *app) connect(walletFlag string) (*wallet.Wallet, error) {
	if walletFlag == "" {
		walletFlag = cfg.DefaultWallet
	}

	if walletFlag == "" {
		w := a.wallets.Default()
		if w == nil {
			return nil, fmt.Errorf("no wallet configured — add one:\n  w3dash wallet add mywallet\n  w3dash wallet use mywallet")
		}
		a.sess.SetAccount(w.Address)
		return w, nil
	}

	if token.IsHexAddress(walletFlag) {
		a.sess.SetAccount(walletFlag)
		return &wallet.Wallet{Address: walletFlag, Type: wallet.TypeWatchOnly}, nil
	}

	w, err := a.wallets.Get(walletFlag)
	if err != nil {
		return nil, fmt.Errorf("wallet %q not found — run `w3dash wallet list`, or pass an address directly", walletFlag)
	}
	a.sess.SetAccount(w.Address)
	return w, nil
}

// orchestrator builds the write path for a signing wallet.
func (a *app) orchestrator(w *wallet.Wallet) (*tx.Orchestrator, error) {
	if w.Type != wallet.TypeSigning {
		return nil, fmt.Errorf("wallet %q cannot sign — add a signing wallet with `w3dash wallet add`", w.Name)
	}
	signer, err := a.wallets.Signer(w.Name)
	if err != nil {
		return nil, err
	}
	sender := chain.NewTxSender(a.client, signer, cfg.RequiredChainID,
		time.Duration(cfg.ReceiptTimeoutSecs)*time.Second)
	return tx.NewOrchestrator(sender, a.sess, a.tokens, a.balances, a.history, a.ingester, a.log), nil
}

// refresh pulls balances and history for the connected account.
func (a *app) refresh(ctx context.Context) error {
	if err := a.balances.Fetch(ctx, a.sess.Account()); err != nil {
		return err
	}
	return a.ingester.Refresh(ctx, a.sess.Account())
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
}

// newLogger writes structured logs to a file; the terminal belongs to the
// command output and the TUI.
func newLogger() (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{cfg.LogPath()}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath()}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return logger, nil
}

// explorerTxURL links a transaction hash to the configured explorer.
func explorerTxURL(hash string) string {
	return cfg.ExplorerURL + "/tx/" + hash
}
