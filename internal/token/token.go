package token

import "fmt"

// Symbol identifies one of the tracked tokens.
type Symbol string

const (
	DAI  Symbol = "DAI"
	USDC Symbol = "USDC"
)

// Token describes one tracked ERC-20 token. Immutable after startup.
type Token struct {
	Symbol   Symbol
	Address  string // contract address, 0x-prefixed
	Decimals int
}

// Registry holds the fixed set of tracked tokens in display order.
type Registry struct {
	tokens []Token
	bysym  map[Symbol]Token
}

// NewRegistry builds a registry from the configured token list.
func NewRegistry(tokens []Token) (*Registry, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no tokens configured")
	}
	r := &Registry{bysym: make(map[Symbol]Token, len(tokens))}
	for _, t := range tokens {
		if !IsHexAddress(t.Address) {
			return nil, fmt.Errorf("token %s: invalid contract address %q", t.Symbol, t.Address)
		}
		if t.Decimals < 0 {
			return nil, fmt.Errorf("token %s: negative decimals", t.Symbol)
		}
		if _, dup := r.bysym[t.Symbol]; dup {
			return nil, fmt.Errorf("token %s: configured twice", t.Symbol)
		}
		r.tokens = append(r.tokens, t)
		r.bysym[t.Symbol] = t
	}
	return r, nil
}

// Get returns the token for sym.
func (r *Registry) Get(sym Symbol) (Token, error) {
	t, ok := r.bysym[sym]
	if !ok {
		return Token{}, fmt.Errorf("unknown token %q", sym)
	}
	return t, nil
}

// All returns the tracked tokens in configuration order.
func (r *Registry) All() []Token {
	out := make([]Token, len(r.tokens))
	copy(out, r.tokens)
	return out
}
