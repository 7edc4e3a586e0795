package session

import (
	"strings"
	"sync"
)

// Session tracks the connected account and chain for one dashboard run and
// notifies listeners when either changes. It is the gate the write path
// checks before submitting anything.
type Session struct {
	mu        sync.Mutex
	account   string
	chainID   int64
	required  int64
	onAccount []func(account string)
	onChain   []func(chainID int64)
}

// NewSession creates a disconnected session pinned to requiredChainID.
func NewSession(requiredChainID int64) *Session {
	return &Session{required: requiredChainID}
}

// Account returns the connected account address (lowercased), or "".
func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// ChainID returns the chain the session currently observes, 0 when unknown.
func (s *Session) ChainID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

// RequiredChainID returns the chain the dashboard operates on.
func (s *Session) RequiredChainID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.required
}

// Connected reports whether an account is set.
func (s *Session) Connected() bool {
	return s.Account() != ""
}

// WrongNetwork reports whether the observed chain is known and differs from
// the required one. Writes are blocked while it returns true.
func (s *Session) WrongNetwork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID != 0 && s.chainID != s.required
}

// SetAccount switches the connected account. Setting the same account again
// is a no-op so listeners do not re-run their refetch cascades. An empty
// account is a disconnect.
func (s *Session) SetAccount(account string) {
	account = strings.ToLower(account)
	s.mu.Lock()
	if s.account == account {
		s.mu.Unlock()
		return
	}
	s.account = account
	listeners := make([]func(string), len(s.onAccount))
	copy(listeners, s.onAccount)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(account)
	}
}

// SetChainID records the observed chain, notifying listeners on change only.
func (s *Session) SetChainID(chainID int64) {
	s.mu.Lock()
	if s.chainID == chainID {
		s.mu.Unlock()
		return
	}
	s.chainID = chainID
	listeners := make([]func(int64), len(s.onChain))
	copy(listeners, s.onChain)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(chainID)
	}
}

// Disconnect clears the account.
func (s *Session) Disconnect() {
	s.SetAccount("")
}

// OnAccountChanged registers a listener for account switches, including
// disconnects.
func (s *Session) OnAccountChanged(fn func(account string)) {
	s.mu.Lock()
	s.onAccount = append(s.onAccount, fn)
	s.mu.Unlock()
}

// OnChainChanged registers a listener for chain switches.
func (s *Session) OnChainChanged(fn func(chainID int64)) {
	s.mu.Lock()
	s.onChain = append(s.onChain, fn)
	s.mu.Unlock()
}
