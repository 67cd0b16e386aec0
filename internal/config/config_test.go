package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PROOFMARK_SERVICE_URL", "https://registry.example/api/register")
	t.Setenv("PROOFMARK_TURNSTILE_SITE_KEY", "site-key")
	t.Setenv("PROOFMARK_REQUEST_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://registry.example/api/register", cfg.ServiceURL)
	assert.Equal(t, "site-key", cfg.TurnstileSiteKey)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DefaultExplorerTxURL, cfg.ExplorerTxURL)
}

func TestValidate_MissingServiceURL(t *testing.T) {
	cfg := &Config{TurnstileSiteKey: "k", RequestTimeout: time.Second}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service URL")
}

func TestValidate_RelativeServiceURL(t *testing.T) {
	cfg := &Config{ServiceURL: "/api/register", TurnstileSiteKey: "k", RequestTimeout: time.Second}
	require.Error(t, cfg.Validate())
}

func TestValidate_MissingSiteKey(t *testing.T) {
	cfg := &Config{ServiceURL: "https://registry.example", RequestTimeout: time.Second}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site key")
}

func TestValidate_NonPositiveTimeout(t *testing.T) {
	cfg := &Config{ServiceURL: "https://registry.example", TurnstileSiteKey: "k"}
	require.Error(t, cfg.Validate())
}

func TestExplorerLink(t *testing.T) {
	cfg := &Config{ExplorerTxURL: "https://explorer.example/tx"}
	assert.Equal(t, "https://explorer.example/tx/0xabc", cfg.ExplorerLink("0xabc"))

	cfg.ExplorerTxURL = "https://explorer.example/tx/"
	assert.Equal(t, "https://explorer.example/tx/0xabc", cfg.ExplorerLink("0xabc"))

	cfg.ExplorerTxURL = ""
	assert.Equal(t, DefaultExplorerTxURL+"0xabc", cfg.ExplorerLink("0xabc"))
}
