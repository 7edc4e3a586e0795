package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3dash/internal/chain"
	"github.com/Mohsinsiddi/w3dash/internal/store"
	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrNoAccount means no wallet is connected or unlocked.
	ErrNoAccount = errors.New("no wallet connected")
	// ErrWrongNetwork means the session is on a chain other than the
	// required one. Write actions are disabled until the user switches.
	ErrWrongNetwork = errors.New("wrong network: switch to the required chain first")
)

// Writer submits a contract write and waits for its confirmation. Submission
// and confirmation are split so the orchestrator can update speculative state
// between the two.
type Writer interface {
	WriteCall(ctx context.Context, contract string, calldata []byte) (string, error)
	AwaitConfirmation(ctx context.Context, txHash string) error
}

// Guard exposes the session state write actions are gated on.
type Guard interface {
	Account() string
	WrongNetwork() bool
}

// Refresher re-ingests confirmed history after a transaction lands.
type Refresher interface {
	Refresh(ctx context.Context, account string) error
}

// Orchestrator runs the full lifecycle of a token write action: precondition
// checks, submission, optimistic store updates, confirmation, and
// reconciliation. Once a transaction is submitted, its lifecycle runs
// detached from the caller's context so navigating away cannot strand a
// pending entry.
type Orchestrator struct {
	writer   Writer
	guard    Guard
	tokens   *token.Registry
	balances *store.BalanceStore
	history  *store.HistoryStore
	ingester Refresher
	log      *zap.Logger

	inflight sync.WaitGroup
}

// NewOrchestrator wires the orchestrator. logger may be nil.
func NewOrchestrator(writer Writer, guard Guard, tokens *token.Registry, balances *store.BalanceStore, history *store.HistoryStore, ingester Refresher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		writer:   writer,
		guard:    guard,
		tokens:   tokens,
		balances: balances,
		history:  history,
		ingester: ingester,
		log:      logger,
	}
}

// Wait blocks until every in-flight confirmation watcher has finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Mint submits a mint of amount to the connected account and returns the
// transaction hash. The optimistic balance rises immediately by the minted
// amount.
func (o *Orchestrator) Mint(ctx context.Context, sym token.Symbol, amount string) (string, error) {
	t, account, raw, err := o.prepare(sym, amount)
	if err != nil {
		return "", err
	}
	ev := store.Event{
		Type:   store.EventMint,
		Token:  sym,
		Amount: token.FormatUnits(raw, t.Decimals),
		From:   token.ZeroAddress,
		To:     account,
		Status: store.StatusPending,
	}
	delta := decimal.NewFromBigInt(raw, -int32(t.Decimals))
	return o.execute(ctx, t, account, chain.MintCalldata(account, raw), ev, delta)
}

// Transfer submits a transfer of amount to recipient and returns the
// transaction hash. The optimistic balance drops immediately by the
// transferred amount.
func (o *Orchestrator) Transfer(ctx context.Context, sym token.Symbol, recipient, amount string) (string, error) {
	t, account, raw, err := o.prepare(sym, amount)
	if err != nil {
		return "", err
	}
	if err := token.ValidateAddress(recipient); err != nil {
		return "", fmt.Errorf("invalid recipient: %w", err)
	}
	ev := store.Event{
		Type:   store.EventTransfer,
		Token:  sym,
		Amount: token.FormatUnits(raw, t.Decimals),
		From:   account,
		To:     recipient,
		Status: store.StatusPending,
	}
	delta := decimal.NewFromBigInt(raw, -int32(t.Decimals)).Neg()
	return o.execute(ctx, t, account, chain.TransferCalldata(recipient, raw), ev, delta)
}

// Approve submits an allowance grant of amount to spender and returns the
// transaction hash. Approvals do not move the balance, so no speculative
// delta is applied.
func (o *Orchestrator) Approve(ctx context.Context, sym token.Symbol, spender, amount string) (string, error) {
	t, account, raw, err := o.prepare(sym, amount)
	if err != nil {
		return "", err
	}
	if err := token.ValidateAddress(spender); err != nil {
		return "", fmt.Errorf("invalid spender: %w", err)
	}
	ev := store.Event{
		Type:   store.EventApprove,
		Token:  sym,
		Amount: token.FormatUnits(raw, t.Decimals),
		From:   account,
		To:     spender,
		Status: store.StatusPending,
	}
	return o.execute(ctx, t, account, chain.ApproveCalldata(spender, raw), ev, decimal.Zero)
}

// prepare runs the shared preconditions and amount parsing.
func (o *Orchestrator) prepare(sym token.Symbol, amount string) (token.Token, string, *big.Int, error) {
	var zero token.Token
	account := o.guard.Account()
	if account == "" {
		return zero, "", nil, ErrNoAccount
	}
	if o.guard.WrongNetwork() {
		return zero, "", nil, ErrWrongNetwork
	}
	t, err := o.tokens.Get(sym)
	if err != nil {
		return zero, "", nil, err
	}
	raw, err := token.ParseUnits(amount, t.Decimals)
	if err != nil {
		return zero, "", nil, fmt.Errorf("invalid amount: %w", err)
	}
	if raw.Sign() <= 0 {
		return zero, "", nil, fmt.Errorf("invalid amount: must be positive")
	}
	return t, account, raw, nil
}

// execute submits the calldata and, on acceptance, records the speculative
// state and watches for confirmation in the background. A rejected
// submission mutates nothing.
func (o *Orchestrator) execute(ctx context.Context, t token.Token, account string, calldata []byte, ev store.Event, delta decimal.Decimal) (string, error) {
	txHash, err := o.writer.WriteCall(ctx, t.Address, calldata)
	if err != nil {
		o.log.Warn("transaction rejected",
			zap.String("token", string(t.Symbol)),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
		return "", fmt.Errorf("transaction rejected: %s", chain.ExtractRevertReason(err.Error()))
	}

	ev.ID = txHash
	ev.TxHash = txHash
	hasDelta := !delta.IsZero()
	if hasDelta {
		o.balances.ApplyDelta(t.Symbol, txHash, delta)
	}
	o.history.AppendOptimistic(ev)
	o.log.Info("transaction submitted",
		zap.String("token", string(t.Symbol)),
		zap.String("type", string(ev.Type)),
		zap.String("hash", txHash))

	// The confirmation watch survives cancellation of the submitting
	// context, otherwise a dismissed screen would strand a Pending entry.
	watchCtx := context.WithoutCancel(ctx)
	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		o.watch(watchCtx, t.Symbol, account, txHash, hasDelta)
	}()
	return txHash, nil
}

// watch waits for the transaction to land and reconciles the stores.
func (o *Orchestrator) watch(ctx context.Context, sym token.Symbol, account, txHash string, hasDelta bool) {
	if err := o.writer.AwaitConfirmation(ctx, txHash); err != nil {
		o.log.Warn("transaction failed",
			zap.String("hash", txHash),
			zap.Error(err))
		if hasDelta {
			o.balances.RevertDelta(sym, txHash)
		}
		o.history.ResolveOptimistic(txHash, store.StatusFailed)
		return
	}

	o.log.Info("transaction confirmed", zap.String("hash", txHash))
	o.history.ResolveOptimistic(txHash, store.StatusSuccess)

	// The refetch is authoritative and supersedes speculative state; the
	// confirmed delta is already on chain, so the outstanding delta goes
	// with it.
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := o.balances.Fetch(fetchCtx, account); err != nil {
		o.log.Warn("post-confirmation balance refetch failed", zap.Error(err))
	}
	if err := o.ingester.Refresh(fetchCtx, account); err != nil {
		o.log.Warn("post-confirmation history refetch failed", zap.Error(err))
	}
}
