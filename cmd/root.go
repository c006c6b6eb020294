package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/roster-cli/internal/apply"
	"github.com/kamusis/roster-cli/internal/config"
	"github.com/kamusis/roster-cli/internal/diff"
	"github.com/kamusis/roster-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string

	// cfg is loaded once per invocation by the root PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "roster",
	Short:        "Roster: track faculty hires, resignations and title changes",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `Roster compares two yearly faculty directory snapshots ("Title: Name, Name")
and reports who was hired, who resigned and whose title changed. The changes
can be written into a spreadsheet roster (.xlsx or .csv) as a new file.`,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.roster/roster.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// standalone commands must run even when the config file is broken.
var standalone = map[string]bool{"init": true, "doctor": true, "fix": true, "version": true}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if standalone[cmd.Name()] {
		logger.Setup(flagLogLevel, "text", os.Stderr)
		return nil
	}
	c, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'roster doctor' to inspect it.", err)
	}
	level := c.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger.Setup(level, c.Log.Format, os.Stderr)
	cfg = c
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEngine(c *config.Config) *diff.Engine {
	return diff.New(
		diff.WithMatchCutoff(c.MatchCutoff),
		diff.WithAnomalyCutoff(c.AnomalyCutoff),
		diff.WithAnomalyLimit(c.AnomalyLimit),
	)
}

func applyOptions(c *config.Config) apply.Options {
	return apply.Options{
		Sentinel:          c.Sentinel,
		DefaultDepartment: c.DefaultDepartment,
		NameAliases:       c.NameAliases,
	}
}
