package ingest

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/w3dash/internal/chain"
	"github.com/Mohsinsiddi/w3dash/internal/store"
	"github.com/Mohsinsiddi/w3dash/internal/token"
	"go.uber.org/zap"
)

// DefaultWindow is how many recent blocks the log queries cover. Scanning
// the entire chain history is prohibitively expensive, so history is bounded
// to recent activity.
const DefaultWindow uint64 = 10_000

// LogSource is the read surface the ingester consumes from the chain client.
type LogSource interface {
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetLogs(ctx context.Context, address string, topics []string, fromBlock, toBlock string) ([]chain.LogEntry, error)
}

// Ingester pulls Transfer and Approval logs for the tracked tokens,
// filters them to the connected account, and normalizes them into typed
// events for the history store.
type Ingester struct {
	source  LogSource
	tokens  *token.Registry
	history *store.HistoryStore
	window  uint64
	log     *zap.Logger
}

// NewIngester creates an ingester. window == 0 selects DefaultWindow;
// logger may be nil.
func NewIngester(source LogSource, tokens *token.Registry, history *store.HistoryStore, window uint64, logger *zap.Logger) *Ingester {
	if window == 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		source:  source,
		tokens:  tokens,
		history: history,
		window:  window,
		log:     logger,
	}
}

// Refresh re-ingests the account's events and replaces the history store's
// confirmed list. A query failure records a store-level error and preserves
// the previous list; callers retry by calling Refresh again. An empty
// account resets the store.
func (ing *Ingester) Refresh(ctx context.Context, account string) error {
	if account == "" {
		ing.history.Reset()
		return nil
	}

	ing.history.SetLoading()
	events, err := ing.Fetch(ctx, account)
	if err != nil {
		ing.log.Warn("event ingestion failed", zap.Error(err))
		ing.history.SetError(fmt.Sprintf("failed to fetch events: %v", err))
		return err
	}
	ing.history.SetConfirmed(events)
	ing.log.Debug("event ingestion complete",
		zap.String("account", account),
		zap.Int("events", len(events)))
	return nil
}

// Fetch queries both log filters for every tracked token over the recent
// block window and returns the account's normalized events, newest first.
// Tokens are queried concurrently; the two filters per token sequentially.
func (ing *Ingester) Fetch(ctx context.Context, account string) ([]store.Event, error) {
	latest, err := ing.source.GetBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting block number: %w", err)
	}
	start := uint64(0)
	if latest > ing.window {
		start = latest - ing.window
	}
	fromBlock := fmt.Sprintf("0x%x", start)

	type result struct {
		events []store.Event
		err    error
	}

	toks := ing.tokens.All()
	results := make(chan result, len(toks))
	var wg sync.WaitGroup
	for _, t := range toks {
		wg.Add(1)
		go func(t token.Token) {
			defer wg.Done()
			evs, err := ing.fetchToken(ctx, t, account, fromBlock)
			results <- result{events: evs, err: err}
		}(t)
	}
	wg.Wait()
	close(results)

	var events []store.Event
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		events = append(events, r.events...)
	}

	// Newest first.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Block > events[j].Block
	})
	return events, nil
}

// fetchToken runs the two sequential log queries for one token.
func (ing *Ingester) fetchToken(ctx context.Context, t token.Token, account, fromBlock string) ([]store.Event, error) {
	var events []store.Event

	transfers, err := ing.source.GetLogs(ctx, t.Address, []string{token.TopicTransfer}, fromBlock, "latest")
	if err != nil {
		return nil, fmt.Errorf("querying %s transfer logs: %w", t.Symbol, err)
	}
	for _, l := range transfers {
		if ev, ok := ing.normalizeTransfer(t, account, l); ok {
			events = append(events, ev)
		}
	}

	approvals, err := ing.source.GetLogs(ctx, t.Address, []string{token.TopicApproval}, fromBlock, "latest")
	if err != nil {
		return nil, fmt.Errorf("querying %s approval logs: %w", t.Symbol, err)
	}
	for _, l := range approvals {
		if ev, ok := ing.normalizeApproval(t, account, l); ok {
			events = append(events, ev)
		}
	}

	return events, nil
}

// normalizeTransfer converts a raw Transfer log into an event when the
// account is sender or recipient. Transfers from the zero address are mints.
func (ing *Ingester) normalizeTransfer(t token.Token, account string, l chain.LogEntry) (store.Event, bool) {
	if len(l.Topics) < 3 || l.TxHash == "" {
		return store.Event{}, false
	}
	from := token.TopicAddress(l.Topics[1])
	to := token.TopicAddress(l.Topics[2])
	amount, ok := parseWord(l.Data)
	if !ok || from == "" || to == "" {
		return store.Event{}, false
	}
	if !token.SameAddress(from, account) && !token.SameAddress(to, account) {
		return store.Event{}, false
	}

	typ := store.EventTransfer
	if token.SameAddress(from, token.ZeroAddress) {
		typ = store.EventMint
	}

	return store.Event{
		ID:     l.TxHash,
		Type:   typ,
		Token:  t.Symbol,
		Amount: token.FormatUnits(amount, t.Decimals),
		From:   from,
		To:     to,
		Status: store.StatusSuccess,
		TxHash: l.TxHash,
		Block:  l.Block(),
	}, true
}

// normalizeApproval converts a raw Approval log into an event when the
// account is owner or spender.
func (ing *Ingester) normalizeApproval(t token.Token, account string, l chain.LogEntry) (store.Event, bool) {
	if len(l.Topics) < 3 || l.TxHash == "" {
		return store.Event{}, false
	}
	owner := token.TopicAddress(l.Topics[1])
	spender := token.TopicAddress(l.Topics[2])
	amount, ok := parseWord(l.Data)
	if !ok || owner == "" || spender == "" {
		return store.Event{}, false
	}
	if !token.SameAddress(owner, account) && !token.SameAddress(spender, account) {
		return store.Event{}, false
	}

	return store.Event{
		ID:     l.TxHash,
		Type:   store.EventApprove,
		Token:  t.Symbol,
		Amount: token.FormatUnits(amount, t.Decimals),
		From:   owner,
		To:     spender,
		Status: store.StatusSuccess,
		TxHash: l.TxHash,
		Block:  l.Block(),
	}, true
}

func parseWord(data string) (*big.Int, bool) {
	clean := strings.TrimPrefix(data, "0x")
	if clean == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(clean, 16)
	return n, ok
}
