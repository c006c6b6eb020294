package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kamusis/roster-cli/internal/diff"
	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/logger"
	"github.com/kamusis/roster-cli/internal/report"
	"github.com/kamusis/roster-cli/internal/roster"
	"github.com/spf13/cobra"
)

var (
	flagAnalyzeJSON bool
	flagAnalyzeSave string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <year1.txt> <year2.txt>",
	Short: "Compare two directory snapshots and report faculty changes",
	Long: `Compare two yearly directory snapshots and list resignations, title changes,
new hires and people holding several titles.

Names that look like a misspelling of a name in the other year are listed as
anomalies and never counted as a hire or a resignation.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagAnalyzeJSON, "json", false, "Print the result as JSON")
	analyzeCmd.Flags().StringVar(&flagAnalyzeSave, "save", "", "Save the result as a report directory for 'roster apply --report'")
	rootCmd.AddCommand(analyzeCmd)
}

// analysisJSON is the --json output.
type analysisJSON struct {
	Year1      string                `json:"year1"`
	Year2      string                `json:"year2"`
	Summary    diff.Summary          `json:"summary"`
	Events     []report.EventEntry   `json:"events"`
	Anomalies  []report.AnomalyEntry `json:"anomalies"`
	Suppressed []string              `json:"suppressed"`
	Unpaired   []string              `json:"unpaired"`
}

func runAnalyze(_ *cobra.Command, args []string) error {
	res, err := compareFiles(args[0], args[1])
	if err != nil {
		return err
	}

	if flagAnalyzeSave != "" {
		if err := saveReport(flagAnalyzeSave, args[0], args[1], res); err != nil {
			return err
		}
	}

	if flagAnalyzeJSON {
		rep := report.FromResult(res, report.Manifest{})
		out := analysisJSON{
			Year1:      args[0],
			Year2:      args[1],
			Summary:    rep.Manifest.Summary,
			Events:     nonNil(rep.Events),
			Anomalies:  nonNil(rep.Manifest.Anomalies),
			Suppressed: nonNil(res.Suppressed),
			Unpaired:   nonNil(res.Unpaired),
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printAnalysis(args[0], args[1], res)
	if flagAnalyzeSave != "" {
		fmt.Fprintln(stdout)
		printOK("", fmt.Sprintf("report saved: %s", flagAnalyzeSave))
	}
	return nil
}

func compareFiles(year1, year2 string) (*diff.Result, error) {
	start := time.Now()
	r1, err := roster.ParseFile(year1)
	if err != nil {
		return nil, err
	}
	r2, err := roster.ParseFile(year2)
	if err != nil {
		return nil, err
	}
	if r1.Empty() {
		return nil, emptySnapshot(year1)
	}
	if r2.Empty() {
		return nil, emptySnapshot(year2)
	}
	res := newEngine(cfg).Compare(r1, r2)
	logger.WithComponent("analyze").Debug("compared snapshots",
		"year1", year1, "year2", year2,
		"skipped_lines", r1.Skipped()+r2.Skipped(),
		"elapsed", time.Since(start),
	)
	return res, nil
}

func emptySnapshot(path string) error {
	return fmt.Errorf("%s contains no 'Title: names' lines: %w", path, apperrors.ErrInvalidInput)
}

func saveReport(dir, year1, year2 string, res *diff.Result) error {
	m := report.Manifest{
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Year1:         year1,
		Year2:         year2,
		MatchCutoff:   cfg.MatchCutoff,
		AnomalyCutoff: cfg.AnomalyCutoff,
		AnomalyLimit:  cfg.AnomalyLimit,
	}
	var err error
	if m.Year1Hash, err = report.FileHash(year1); err != nil {
		return err
	}
	if m.Year2Hash, err = report.FileHash(year2); err != nil {
		return err
	}
	if err := report.Save(dir, report.FromResult(res, m)); err != nil {
		return fmt.Errorf("cannot save report: %w", err)
	}
	return nil
}

func printAnalysis(year1, year2 string, res *diff.Result) {
	fmt.Fprintf(stdout, "\nroster analyze %s → %s\n", year1, year2)

	printSection(fmt.Sprintf("Resignations (%d)", res.Summary().Resigned))
	printGroups(res.Resigned, printMiss)

	printSection(fmt.Sprintf("Title changes (%d)", len(res.TitleChanges)))
	for _, c := range res.TitleChanges {
		printInfo(c.Name, fmt.Sprintf("%s → %s", c.From, c.To))
	}

	printSection(fmt.Sprintf("New hires (%d)", res.Summary().NewHires))
	printGroups(res.NewHires, printOK)

	if len(res.MultipleTitles) > 0 {
		printSection(fmt.Sprintf("Multiple titles (%d)", len(res.MultipleTitles)))
		for _, m := range res.MultipleTitles {
			printWarn(m.Name, fmt.Sprintf("%s → %s", strings.Join(m.Year1Titles, ", "), strings.Join(m.Year2Titles, ", ")))
		}
	}

	if len(res.Anomalies) > 0 {
		printSection(fmt.Sprintf("Possible misspellings (%d, not counted)", len(res.Anomalies)))
		for _, p := range res.Anomalies {
			printWarn(p.Name, "close to "+strings.Join(p.Near, ", "))
		}
	}

	s := res.Summary()
	printSection("Summary")
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Resignations:\t%d\n", s.Resigned)
	fmt.Fprintf(w, "  Title changes:\t%d\n", s.TitleChanges)
	fmt.Fprintf(w, "  New hires:\t%d\n", s.NewHires)
	fmt.Fprintf(w, "  Multiple titles:\t%d\n", s.MultipleTitles)
	fmt.Fprintf(w, "  Unchanged:\t%d\n", s.Unchanged)
	fmt.Fprintf(w, "  Suppressed:\t%d\n", s.Suppressed)
	_ = w.Flush()
}

func printGroups(groups []diff.TitleGroup, line func(name, msg string)) {
	if len(groups) == 0 {
		printSkip("", "none")
		return
	}
	for _, g := range groups {
		printBullet(g.Title + ":")
		for _, n := range g.Names {
			line("", n)
		}
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
