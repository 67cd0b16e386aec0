// Package gate holds the human-verification token that must accompany
// every submission. Tokens are single-use by contract of the
// verification provider, so the gate enforces exactly-once consumption.
package gate

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNoToken indicates the gate holds no unconsumed token.
	ErrNoToken = errors.New("gate: no verification token available")
	// ErrExhausted indicates a provider has already issued its token.
	ErrExhausted = errors.New("gate: provider token already issued")
)

// Provider is the capability interface for the external
// human-verification widget. Challenge blocks until the operator
// completes the challenge (or the context ends); Reset instructs the
// widget to discard its current token so a fresh challenge can run.
type Provider interface {
	Challenge(ctx context.Context) (string, error)
	Reset()
}

// TokenGate stores at most one unconsumed verification token.
type TokenGate struct {
	mu    sync.Mutex
	token string
}

// NewTokenGate returns an empty gate.
func NewTokenGate() *TokenGate {
	return &TokenGate{}
}

// Accept stores a freshly issued token, replacing any unconsumed one.
// A replaced token is simply dropped: the provider already invalidated
// it when it issued the new one.
func (g *TokenGate) Accept(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// Consume returns the stored token and clears it. A second Consume
// without an intervening Accept fails with ErrNoToken.
func (g *TokenGate) Consume() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token == "" {
		return "", ErrNoToken
	}
	token := g.token
	g.token = ""
	return token, nil
}

// Armed reports whether an unconsumed token is available.
func (g *TokenGate) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != ""
}

// Reset discards any stored token.
func (g *TokenGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}

// StaticProvider satisfies Provider with a token minted out-of-band
// (for example, passed on the command line). It honors the single-use
// contract: the token is issued once, and further challenges fail until
// Reset installs nothing, so a second submission needs a new provider.
type StaticProvider struct {
	mu     sync.Mutex
	token  string
	issued bool
}

// NewStaticProvider wraps a pre-issued verification token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// Challenge hands out the wrapped token exactly once.
func (p *StaticProvider) Challenge(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.issued || p.token == "" {
		return "", ErrExhausted
	}
	p.issued = true
	return p.token, nil
}

// Reset marks the provider exhausted: a static token cannot be
// re-challenged, only replaced by a new provider.
func (p *StaticProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.issued = true
}
