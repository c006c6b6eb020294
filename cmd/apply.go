package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kamusis/roster-cli/internal/apply"
	"github.com/kamusis/roster-cli/internal/diff"
	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagApplyReport     string
	flagApplyYear       string
	flagApplyDepartment string
	flagApplyOut        string
)

var applyCmd = &cobra.Command{
	Use:   "apply <roster.xlsx|csv> (<year1.txt> <year2.txt> | --report DIR)",
	Short: "Write detected changes into a spreadsheet roster",
	Long: `Compare two snapshots (or load a report saved with 'roster analyze --save')
and write the changes into the --year column of a copy of the roster.

The input spreadsheet is never modified. The output is named
<stem>_updated_<year><ext>; if that file exists, _1, _2, ... is appended.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if flagApplyReport != "" {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(3)(cmd, args)
	},
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&flagApplyReport, "report", "", "Apply a saved report instead of comparing snapshots")
	applyCmd.Flags().StringVar(&flagApplyYear, "year", "", "Year column to update, e.g. 2024-2025 (required)")
	applyCmd.Flags().StringVar(&flagApplyDepartment, "department", "", "Department for appended rows (default from config)")
	applyCmd.Flags().StringVar(&flagApplyOut, "out", "", "Output directory (default: next to the roster, or output_dir from config)")
	_ = applyCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(applyCmd)
}

func runApply(_ *cobra.Command, args []string) error {
	var (
		res *diff.Result
		err error
	)
	if flagApplyReport != "" {
		res, err = loadReport(flagApplyReport)
	} else {
		res, err = compareFiles(args[1], args[2])
	}
	if err != nil {
		return err
	}

	changes := apply.FromResult(res)
	if changes.Empty() {
		printSkip("", "no resignations, title changes or new hires to apply")
	}
	if len(res.MultipleTitles) > 0 {
		printWarn("", fmt.Sprintf("%d people with multiple titles need manual review", len(res.MultipleTitles)))
	}

	opts := applyOptions(cfg)
	if flagApplyDepartment != "" {
		opts.DefaultDepartment = flagApplyDepartment
	}
	outDir := flagApplyOut
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", outDir, err)
		}
	}

	written, changeLog, err := apply.ApplyFile(args[0], outDir, flagApplyYear, changes, opts)
	if err != nil {
		var missing *apperrors.MissingColumnError
		if errors.As(err, &missing) && missing.Column == flagApplyYear {
			return fmt.Errorf("%w\nUse --year with one of the columns above.", err)
		}
		return err
	}

	printSection(fmt.Sprintf("Changes (%d)", len(changeLog)))
	for _, line := range changeLog {
		printInfo("", line)
	}
	fmt.Fprintln(stdout)
	printOK("", fmt.Sprintf("updated roster written: %s", written))
	return nil
}

func loadReport(dir string) (*diff.Result, error) {
	rep, err := report.Load(dir)
	if err != nil {
		return nil, err
	}
	return rep.Result()
}
