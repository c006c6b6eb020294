package apply

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/kamusis/roster-cli/internal/diff"
	"github.com/kamusis/roster-cli/internal/outfile"
	"github.com/kamusis/roster-cli/internal/sheet"
)

// FromResult converts a diff result into changes. Multiple-title entries
// are left for manual review and are not applied.
func FromResult(res *diff.Result) Changes {
	var c Changes
	seen := make(map[string]bool)
	for _, g := range res.Resigned {
		for _, n := range g.Names {
			if !seen[n] {
				seen[n] = true
				c.Resigned = append(c.Resigned, n)
			}
		}
	}
	for _, tc := range res.TitleChanges {
		c.TitleChanges = append(c.TitleChanges, TitleChange{Name: tc.Name, Change: tc.From + " -> " + tc.To})
	}
	for _, g := range res.NewHires {
		for _, n := range g.Names {
			c.NewHires = append(c.NewHires, Hire{Name: n, Title: g.Title})
		}
	}
	return c
}

// OutputPath is the canonical output name for input updated for year:
// dir/stem_updated_2023_2024.ext.
func OutputPath(input, outDir, year string) string {
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outDir, stem+"_updated_"+strings.ReplaceAll(year, "-", "_")+ext)
}

// ApplyFile loads the roster at input, applies changes and saves the result
// next to it (or in outDir) under a name that does not overwrite any file.
// It returns the path written and the change log.
func ApplyFile(input, outDir, year string, changes Changes, opts Options) (string, []string, error) {
	format, err := sheet.FormatOf(input)
	if err != nil {
		return "", nil, err
	}
	table, err := sheet.Load(input)
	if err != nil {
		return "", nil, err
	}
	updated, log, err := Apply(table, year, changes, opts)
	if err != nil {
		return "", nil, err
	}
	written, err := outfile.Write(OutputPath(input, outDir, year), outfile.DefaultLockTimeout, func(w io.Writer) error {
		return sheet.Save(updated, w, format)
	})
	if err != nil {
		return "", nil, err
	}
	return written, log, nil
}
