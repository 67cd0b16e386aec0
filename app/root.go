// Package app assembles the proofmark command tree.
package app

import (
	"github.com/spf13/cobra"

	"github.com/proofmark/proofmark/cmd/version"
	"github.com/proofmark/proofmark/internal/config"
)

// rootFlags overlay environment configuration; flags win.
type rootFlags struct {
	serviceURL  string
	siteKey     string
	explorerURL string
}

// RootCmd creates the proofmark root command.
func RootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "proofmark",
		Short: "Register and verify proof-of-existence claims for files",
		Long: `proofmark fingerprints a file locally, signs a claim over the
fingerprint with a wallet key, and registers the claim with a remote
ledger-backed service. File contents never leave the machine; only the
fingerprint is transmitted. Anyone holding a fingerprint can verify its
registered status without the file, a wallet, or a verification token.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.serviceURL, "service-url", "", "registration service endpoint (overrides PROOFMARK_SERVICE_URL)")
	cmd.PersistentFlags().StringVar(&flags.siteKey, "site-key", "", "human-verification site key (overrides PROOFMARK_TURNSTILE_SITE_KEY)")
	cmd.PersistentFlags().StringVar(&flags.explorerURL, "explorer-url", "", "base URL for transaction links (overrides PROOFMARK_EXPLORER_TX_URL)")

	cmd.AddCommand(
		stampCmd(flags),
		verifyCmd(flags),
		fingerprintCmd(),
		version.NewVersionCmd(),
	)
	return cmd
}

// loadConfig reads the environment, overlays root flags, and validates.
// A validation failure here is the one fatal startup condition.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.serviceURL != "" {
		cfg.ServiceURL = flags.serviceURL
	}
	if flags.siteKey != "" {
		cfg.TurnstileSiteKey = flags.siteKey
	}
	if flags.explorerURL != "" {
		cfg.ExplorerTxURL = flags.explorerURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
