package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofmark/proofmark/internal/attestation"
	"github.com/proofmark/proofmark/internal/gate"
	"github.com/proofmark/proofmark/internal/registry"
	"github.com/proofmark/proofmark/internal/workflow"
)

func stampCmd(flags *rootFlags) *cobra.Command {
	var (
		token  string
		keyHex string
	)

	cmd := &cobra.Command{
		Use:   "stamp <file>",
		Short: "Register proof of existence for a file",
		Long: `Stamp runs the full workflow: fingerprint the file locally, sign the
canonical claim with the wallet key, and submit the bundle together
with a single-use human-verification token. The token must have been
issued for the configured site key; it is spent by the attempt whether
or not the service accepts the submission.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if keyHex == "" {
				keyHex = cfg.PrivateKeyHex
			}

			signer, err := attestation.NewKeySigner(keyHex)
			if err != nil {
				return err
			}
			client, err := registry.NewClient(cfg.ServiceURL,
				registry.WithTimeout(cfg.RequestTimeout),
				registry.WithLogger(zap.L().Named("registry")))
			if err != nil {
				return err
			}
			wf, err := workflow.New(client,
				workflow.WithSigner(signer),
				workflow.WithProvider(gate.NewStaticProvider(token)),
				workflow.WithLogger(zap.L().Named("workflow")))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			digest, err := wf.SelectFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", digest)

			if err := wf.Sign(ctx); err != nil {
				return err
			}
			if err := wf.RequestChallenge(ctx); err != nil {
				return err
			}

			record, err := wf.Submit(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signer:      %s\n", wf.Snapshot().SignerAddress)
			fmt.Fprintf(out, "Transaction: %s\n", record.TxHash)
			fmt.Fprintf(out, "Block:       %d\n", record.BlockNumber)
			fmt.Fprintf(out, "Explorer:    %s\n", cfg.ExplorerLink(record.TxHash))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "single-use human-verification token (required)")
	cmd.Flags().StringVar(&keyHex, "key", "", "hex-encoded secp256k1 private key (overrides PROOFMARK_PRIVATE_KEY)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
