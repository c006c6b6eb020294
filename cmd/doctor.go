package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gofrs/flock"
	"github.com/kamusis/roster-cli/internal/config"
	"github.com/kamusis/roster-cli/internal/outfile"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that roster's config, overrides and output locations are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected issues in the roster environment.

Currently fixes:
  - Missing ~/.roster/.env: writes the override template
  - Missing output_dir: creates the directory

Run 'roster doctor' first to see what will be fixed.`,
	RunE: runDoctorFix,
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	printSection("roster doctor fix")

	fmt.Fprintln(stdout, "\n[ .env ]")
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if err := config.EnsureDotEnvTemplate(); err != nil {
			printErr("", err.Error())
			return err
		}
		printOK("", fmt.Sprintf("template written: %s", envPath))
	} else {
		printOK("", "present, nothing to fix")
	}

	fmt.Fprintln(stdout, "\n[ Output directory ]")
	c, err := config.Load(flagConfig)
	if err != nil {
		printErr("", fmt.Sprintf("cannot load config: %v", err))
		return fmt.Errorf("config must be fixed by hand: %w", err)
	}
	switch {
	case c.OutputDir == "":
		printSkip("", "output_dir not set, outputs go next to their input")
	case dirExists(c.OutputDir):
		printOK("", "present, nothing to fix")
	default:
		if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
			printErr("", fmt.Sprintf("cannot create %s: %v", c.OutputDir, err))
			return err
		}
		printOK("", fmt.Sprintf("created %s", c.OutputDir))
	}
	return nil
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("roster doctor")
	fmt.Fprintln(stdout)

	// ── Check 1: config file ──────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ roster.yaml ]")
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath, _ = config.ConfigPath()
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", fmt.Sprintf("%s not found, using defaults (run 'roster init' to create it)", cfgPath))
	} else {
		printOK("", fmt.Sprintf("found: %s", cfgPath))
	}
	c, loadErr := config.Load(flagConfig)
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
	} else {
		printOK("", fmt.Sprintf("match_cutoff=%.2f anomaly_cutoff=%.2f anomaly_limit=%d sentinel=%q",
			c.MatchCutoff, c.AnomalyCutoff, c.AnomalyLimit, c.Sentinel))
	}
	fmt.Fprintln(stdout)

	// ── Check 2: overrides ────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ ROSTER_* overrides ]")
	dotenv, err := config.LoadDotEnv()
	if err != nil {
		failD("cannot read .env: %v", err)
	}
	var active []string
	for _, k := range config.EnvKeys {
		if v, _ := config.GetConfigValue(k); v != "" {
			active = append(active, k)
		}
	}
	switch {
	case len(active) > 0:
		printInfo("", "active: "+strings.Join(active, ", "))
	case len(dotenv) == 0:
		printSkip("", "none (run 'roster doctor fix' to write the .env template)")
	default:
		printOK("", "none active")
	}
	fmt.Fprintln(stdout)

	// ── Check 3: output directory ─────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Output directory ]")
	if loadErr != nil {
		printWarn("", "skipped (roster.yaml not loaded)")
	} else if c.OutputDir == "" {
		printSkip("", "output_dir not set, outputs go next to their input")
	} else if !dirExists(c.OutputDir) {
		failD("%s does not exist (run 'roster doctor fix')", c.OutputDir)
	} else if err := probeWritable(c.OutputDir); err != nil {
		failD("%s is not writable: %v", c.OutputDir, err)
	} else {
		printOK("", fmt.Sprintf("writable: %s", c.OutputDir))
	}
	fmt.Fprintln(stdout)

	// ── Check 4: output lock ──────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Output lock ]")
	lockPath, err := outfile.LockPath()
	if err != nil {
		failD("%v", err)
	} else {
		l := flock.New(lockPath)
		if locked, err := l.TryLock(); err != nil {
			failD("cannot lock %s: %v", lockPath, err)
		} else if !locked {
			printWarn("", fmt.Sprintf("held by another roster process: %s", lockPath))
		} else {
			_ = l.Unlock()
			printOK("", lockPath)
		}
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, "[ Runtime ]")
	printOK("", fmt.Sprintf("roster %s, %s %s/%s", version, runtime.Version(), runtime.GOOS, runtime.GOARCH))
	fmt.Fprintln(stdout)

	// ── Summary ──────────────────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "===================")
	if allOK {
		fmt.Fprintln(stdout, "✓  All checks passed. Roster is ready to use.")
	} else {
		fmt.Fprintln(stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// probeWritable creates and removes a throwaway file in dir.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".roster-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}
