// Package config carries the process-wide immutable configuration for
// the client. It is loaded once at startup and validated fail-fast:
// missing required values prevent the workflow from initializing at
// all, the only fatal condition in the system.
package config

import (
	"net/url"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const envPrefix = "PROOFMARK_"

// DefaultExplorerTxURL renders transaction identifiers as links into a
// public ledger explorer when no template is configured.
const DefaultExplorerTxURL = "https://sepolia.basescan.org/tx/"

// Config is injected at workflow construction time. Flags may overlay
// individual fields after Load and before Validate.
type Config struct {
	// ServiceURL is the registration service endpoint. Required.
	ServiceURL string `env:"SERVICE_URL"`
	// TurnstileSiteKey identifies this client to the human-verification
	// provider. Required.
	TurnstileSiteKey string `env:"TURNSTILE_SITE_KEY"`
	// ExplorerTxURL is the base URL a transaction hash is appended to.
	ExplorerTxURL string `env:"EXPLORER_TX_URL"`
	// PrivateKeyHex configures the local wallet signer. Optional:
	// verify-only sessions need no signer.
	PrivateKeyHex string `env:"PRIVATE_KEY"`
	// RequestTimeout bounds each registration service round-trip.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from PROOFMARK_-prefixed environment
// variables and applies defaults.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if cfg.ExplorerTxURL == "" {
		cfg.ExplorerTxURL = DefaultExplorerTxURL
	}
	return &cfg, nil
}

// Validate checks the invariants once, before anything is constructed.
func (c *Config) Validate() error {
	if c.ServiceURL == "" {
		return errors.New("config: service URL is required")
	}
	if u, err := url.Parse(c.ServiceURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("config: service URL %q is not an absolute URL", c.ServiceURL)
	}
	if c.TurnstileSiteKey == "" {
		return errors.New("config: turnstile site key is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: request timeout must be positive")
	}
	return nil
}

// ExplorerLink renders a transaction hash as an explorer hyperlink.
func (c *Config) ExplorerLink(txHash string) string {
	base := c.ExplorerTxURL
	if base == "" {
		base = DefaultExplorerTxURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + txHash
}
