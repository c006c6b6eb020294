package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/roster-cli/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config and dotenv template",
	Long: `Create ~/.roster/ with a default roster.yaml and a .env template listing
every ROSTER_* override. Existing files are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.roster directory ────────────────────────────────────────
	rosterDir, err := config.RosterDir()
	if err != nil {
		return err
	}
	cfgPath := flagConfig
	if cfgPath == "" {
		if cfgPath, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	// ── 2. Create ~/.roster/ if it doesn't exist ──────────────────────────────
	if err := os.MkdirAll(rosterDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", rosterDir, err)
	}
	printOK("", fmt.Sprintf("Roster directory ready: %s", rosterDir))

	// ── 3. Write roster.yaml if missing ───────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(config.DefaultConfig(), cfgPath); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Write .env template if missing ─────────────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(envPath)
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	if os.IsNotExist(statErr) {
		printOK("", fmt.Sprintf("Dotenv template written: %s", envPath))
	} else {
		printSkip("", fmt.Sprintf("Dotenv already exists: %s", envPath))
	}

	// ── 5. Validate the final config ──────────────────────────────────────────
	if _, err := config.Load(cfgPath); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\n✓  roster init complete. Run 'roster doctor' to verify your environment.")
	return nil
}
