package version

import (
	"fmt"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"
)

// Build-time values, injected via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const versionTemplate = ` Version:	{{.Version}}
 Git commit:	{{.GitCommit}}
 Built:		{{.BuildTime}}
 Go version:	{{.GoVersion}}
 OS/Arch:	{{.Os}}/{{.Arch}}
`

type versionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Os        string
	Arch      string
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := template.New("version").Parse(versionTemplate)
			if err != nil {
				return fmt.Errorf("template parsing error: %w", err)
			}
			return tmpl.Execute(cmd.OutOrStdout(), versionInfo{
				Version:   Version,
				GitCommit: GitCommit,
				BuildTime: BuildTime,
				GoVersion: runtime.Version(),
				Os:        runtime.GOOS,
				Arch:      runtime.GOARCH,
			})
		},
	}
}
