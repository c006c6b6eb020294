package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/kamusis/roster-cli/internal/anomaly"
	"github.com/kamusis/roster-cli/internal/config"
	"github.com/kamusis/roster-cli/internal/match"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/kamusis/roster-cli/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show roster version, build information and the config file in use",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Fprintf(stdout, "Version:    %s\n", version)
	fmt.Fprintf(stdout, "Commit:     %s\n", emptyAsNA(commit))
	fmt.Fprintf(stdout, "Build Date: %s\n", emptyAsNA(buildDate))
	fmt.Fprintf(stdout, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(stdout, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(stdout, "Config:     %s\n", configInUse())
	fmt.Fprintf(stdout, "Cutoffs:    match %.2f, anomaly %.2f\n", match.DefaultCutoff, anomaly.DefaultCutoff)
	return nil
}

// configInUse names the config file a command would load, noting when it is
// absent and the defaults apply.
func configInUse() string {
	path := flagConfig
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return "n/a"
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		return path + " (not found, using defaults)"
	}
	return path
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
