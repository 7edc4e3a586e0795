package store

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3dash/internal/token"
	"github.com/shopspring/decimal"
)

// BalanceReader is the read half of the chain surface the balance store
// consumes.
type BalanceReader interface {
	GetTokenBalance(ctx context.Context, tokenAddr, walletAddr string) (*big.Int, error)
}

// Balance is the externally visible state of one token's balance.
// Optimistic equals Confirmed plus the sum of outstanding speculative deltas.
type Balance struct {
	Confirmed  string
	Optimistic string
	Loading    bool
	Err        string
}

type balanceState struct {
	confirmed decimal.Decimal
	loading   bool
	err       string
	deltas    map[string]decimal.Decimal // outstanding deltas keyed by tx hash
}

// BalanceStore holds confirmed + optimistic balances per tracked token.
// All mutation happens through its methods as atomic read-modify-write
// operations under one lock, so concurrent action completions cannot lose
// updates.
type BalanceStore struct {
	reader BalanceReader
	tokens *token.Registry

	mu        sync.Mutex
	states    map[token.Symbol]*balanceState
	listeners []func()
}

// NewBalanceStore creates a balance store tracking every registry token at
// the zero-equivalent value.
func NewBalanceStore(reader BalanceReader, tokens *token.Registry) *BalanceStore {
	s := &BalanceStore{
		reader: reader,
		tokens: tokens,
		states: make(map[token.Symbol]*balanceState),
	}
	for _, t := range tokens.All() {
		s.states[t.Symbol] = &balanceState{deltas: make(map[string]decimal.Decimal)}
	}
	return s
}

// OnChange registers a listener invoked after every store mutation.
func (s *BalanceStore) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Balance returns the current state for sym.
func (s *BalanceStore) Balance(sym token.Symbol) Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[sym]
	if !ok {
		return Balance{Confirmed: "0", Optimistic: "0"}
	}
	return Balance{
		Confirmed:  st.confirmed.String(),
		Optimistic: st.optimistic().String(),
		Loading:    st.loading,
		Err:        st.err,
	}
}

// Balances returns the state of every tracked token.
func (s *BalanceStore) Balances() map[token.Symbol]Balance {
	out := make(map[token.Symbol]Balance)
	for _, t := range s.tokens.All() {
		out[t.Symbol] = s.Balance(t.Symbol)
	}
	return out
}

// Fetch pulls every tracked token's confirmed balance for account. Token
// reads run concurrently. A completed fetch is authoritative: it resets the
// optimistic value to the confirmed one and drops outstanding deltas for the
// fetched token. An empty account (disconnected wallet) resets all balances
// to zero without touching the chain; that is not an error state.
//
// A failed read records a per-token error and leaves the previous values in
// place — stale-but-available over blank.
func (s *BalanceStore) Fetch(ctx context.Context, account string) error {
	if account == "" {
		s.mu.Lock()
		for _, st := range s.states {
			st.confirmed = decimal.Zero
			st.deltas = make(map[string]decimal.Decimal)
			st.loading = false
			st.err = ""
		}
		s.mu.Unlock()
		s.fire()
		return nil
	}

	s.mu.Lock()
	for _, st := range s.states {
		st.loading = true
		st.err = ""
	}
	s.mu.Unlock()
	s.fire()

	type result struct {
		sym token.Symbol
		raw *big.Int
		err error
	}

	toks := s.tokens.All()
	results := make(chan result, len(toks))
	var wg sync.WaitGroup
	for _, t := range toks {
		wg.Add(1)
		go func(t token.Token) {
			defer wg.Done()
			raw, err := s.reader.GetTokenBalance(ctx, t.Address, account)
			results <- result{sym: t.Symbol, raw: raw, err: err}
		}(t)
	}
	wg.Wait()
	close(results)

	var firstErr error
	s.mu.Lock()
	for r := range results {
		st := s.states[r.sym]
		st.loading = false
		if r.err != nil {
			st.err = fmt.Sprintf("failed to fetch %s balance: %v", r.sym, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		t, _ := s.tokens.Get(r.sym)
		st.confirmed = decimal.NewFromBigInt(r.raw, -int32(t.Decimals))
		st.deltas = make(map[string]decimal.Decimal)
		st.err = ""
	}
	s.mu.Unlock()
	s.fire()

	if firstErr != nil {
		return fmt.Errorf("fetching balances: %w", firstErr)
	}
	return nil
}

// ApplyDelta records a signed speculative delta for an in-flight transaction.
// Only the optimistic value moves; Confirmed is untouched.
func (s *BalanceStore) ApplyDelta(sym token.Symbol, txID string, delta decimal.Decimal) {
	s.mu.Lock()
	if st, ok := s.states[sym]; ok {
		st.deltas[txID] = delta
	}
	s.mu.Unlock()
	s.fire()
}

// RevertDelta removes the speculative delta for a failed transaction,
// re-deriving the optimistic value from confirmed plus the remaining
// outstanding deltas.
func (s *BalanceStore) RevertDelta(sym token.Symbol, txID string) {
	s.mu.Lock()
	if st, ok := s.states[sym]; ok {
		delete(st.deltas, txID)
	}
	s.mu.Unlock()
	s.fire()
}

// ResetOptimistic drops every outstanding delta, making optimistic equal
// confirmed for all tokens.
func (s *BalanceStore) ResetOptimistic() {
	s.mu.Lock()
	for _, st := range s.states {
		st.deltas = make(map[string]decimal.Decimal)
	}
	s.mu.Unlock()
	s.fire()
}

func (st *balanceState) optimistic() decimal.Decimal {
	v := st.confirmed
	for _, d := range st.deltas {
		v = v.Add(d)
	}
	return v
}

func (s *BalanceStore) fire() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
