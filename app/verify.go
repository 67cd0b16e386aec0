package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofmark/proofmark/internal/fingerprint"
	"github.com/proofmark/proofmark/internal/registry"
	"github.com/proofmark/proofmark/internal/workflow"
)

func verifyCmd(flags *rootFlags) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "verify <file-or-hash>",
		Short: "Check whether a fingerprint is registered",
		Long: `Verify issues a read-only lookup against the registration service.
The argument is either a file (fingerprinted locally) or a canonical
0x-prefixed fingerprint, so third parties can verify without owning
the file. No wallet or verification token is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
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
				workflow.WithLogger(zap.L().Named("workflow")))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var digest string
			if fingerprint.Valid(args[0]) {
				digest = args[0]
				if err := wf.SetFingerprint(digest); err != nil {
					return err
				}
			} else {
				if digest, err = wf.SelectFile(ctx, args[0]); err != nil {
					return err
				}
			}

			result, err := wf.Verify(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Found && wait {
				fmt.Fprintf(out, "Not registered yet; watching %s\n", digest)
				if result, err = client.WaitUntilFound(ctx, digest); err != nil {
					return err
				}
			}

			if !result.Found {
				fmt.Fprintf(out, "Fingerprint %s is not registered\n", digest)
				return nil
			}
			fmt.Fprintf(out, "Fingerprint: %s\n", digest)
			fmt.Fprintf(out, "Owner:       %s\n", result.Owner)
			fmt.Fprintf(out, "Registered:  %s\n", time.Unix(result.Timestamp, 0).Local().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the fingerprint is registered")
	return cmd
}
