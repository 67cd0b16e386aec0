package app

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/proofmark/proofmark/internal/fingerprint"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <file>...",
		Short: "Compute content fingerprints locally",
		Long: `Fingerprint digests one or more files and prints their canonical
fingerprints. Nothing is transmitted; the digest depends only on file
contents, never on names or metadata.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digests, err := fingerprint.ComputeAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			lines := lo.Map(digests, func(d fingerprint.FileDigest, _ int) string {
				return d.Digest + "  " + d.Path
			})
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return nil
		},
	}
}
