// Package apply writes classified roster changes into a tabular roster.
//
// Names are compared exactly after trimming, Unicode composition and case
// folding. Fuzzy identity was settled by the diff engine; the names handed
// to Apply are trusted as given.
package apply

import (
	"fmt"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/logger"
	"github.com/kamusis/roster-cli/internal/sheet"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultSentinel   = "N"
	DefaultDepartment = "Engineering"
)

// TitleChange carries a change as "old -> new" or just the new title.
type TitleChange struct {
	Name   string
	Change string
}

type Hire struct {
	Name  string
	Title string
}

// Changes is the input to Apply.
type Changes struct {
	Resigned     []string
	TitleChanges []TitleChange
	NewHires     []Hire
}

func (c Changes) Empty() bool {
	return len(c.Resigned) == 0 && len(c.TitleChanges) == 0 && len(c.NewHires) == 0
}

type Options struct {
	// Sentinel marks a year cell where the person is not on staff.
	Sentinel string
	// DefaultDepartment fills the department column of appended rows.
	DefaultDepartment string
	// NameAliases are accepted spellings of the faculty name header.
	NameAliases []string
}

func (o Options) withDefaults() Options {
	if o.Sentinel == "" {
		o.Sentinel = DefaultSentinel
	}
	if o.DefaultDepartment == "" {
		o.DefaultDepartment = DefaultDepartment
	}
	if o.NameAliases == nil {
		o.NameAliases = sheet.DefaultNameAliases
	}
	return o
}

// ParseTitleChange returns the text after the last "->" in s, or all of s,
// trimmed.
func ParseTitleChange(s string) string {
	if i := strings.LastIndex(s, "->"); i >= 0 {
		return strings.TrimSpace(s[i+len("->"):])
	}
	return strings.TrimSpace(s)
}

// Apply returns a copy of table with year updated for every change, and the
// change log. The table is never modified. Missing columns are reported
// before anything is changed.
//
// Rows are visited in sheet order for resignations and title changes; a name
// that is both resigned and changed is treated as resigned. New hires follow
// in input order: an existing row is corrected in place, otherwise a row is
// appended with the sentinel in every other column.
func Apply(table *sheet.Table, year string, changes Changes, opts Options) (*sheet.Table, []string, error) {
	opts = opts.withDefaults()

	out := table.Clone()
	if !out.NormalizeNameColumn(opts.NameAliases) {
		return nil, nil, &apperrors.MissingColumnError{Column: sheet.NameColumn, Available: table.Columns}
	}
	if !out.Has(year) {
		return nil, nil, &apperrors.MissingColumnError{Column: year, Available: table.Columns}
	}
	if len(out.Rows) == 0 {
		return nil, nil, apperrors.ErrEmptySheet
	}
	nameCol, yearCol := out.Column(sheet.NameColumn), out.Column(year)

	fold := cases.Fold()
	key := func(s string) string {
		return fold.String(norm.NFC.String(strings.TrimSpace(s)))
	}

	rowByName := make(map[string]int, len(out.Rows))
	for i, row := range out.Rows {
		if k := key(row[nameCol]); k != "" {
			rowByName[k] = i // last row wins
		}
	}
	resigned := make(map[string]bool, len(changes.Resigned))
	for _, n := range changes.Resigned {
		resigned[key(n)] = true
	}
	retitled := make(map[string]string, len(changes.TitleChanges))
	for _, c := range changes.TitleChanges {
		retitled[key(c.Name)] = c.Change
	}

	var log []string
	for _, row := range out.Rows {
		name := row[nameCol]
		k := key(name)
		if k == "" {
			continue
		}
		old := row[yearCol]
		if resigned[k] {
			row[yearCol] = opts.Sentinel
			log = append(log, fmt.Sprintf("RESIGNED: %s: %s → %s", name, old, opts.Sentinel))
			continue
		}
		if change, ok := retitled[k]; ok {
			title := ParseTitleChange(change)
			row[yearCol] = title
			log = append(log, fmt.Sprintf("TITLE CHANGE: %s: %s → %s", name, old, title))
		}
	}

	for _, h := range dedupeHires(changes.NewHires, key) {
		if i, ok := rowByName[key(h.Name)]; ok {
			row := out.Rows[i]
			old := row[yearCol]
			row[yearCol] = h.Title
			log = append(log, fmt.Sprintf("UPDATED: %s: %s → %s", row[nameCol], old, h.Title))
			continue
		}
		values := map[string]string{sheet.NameColumn: h.Name, year: h.Title}
		if out.Has(sheet.DepartmentColumn) {
			values[sheet.DepartmentColumn] = opts.DefaultDepartment
		}
		out.AppendRow(values, opts.Sentinel)
		log = append(log, fmt.Sprintf("NEW HIRE: %s as %s", h.Name, h.Title))
	}

	logger.WithComponent("apply").Debug("applied changes",
		"year", year,
		"changes", len(log),
		"rows", len(out.Rows),
	)
	return out, log, nil
}

// dedupeHires keeps one entry per name: the position of its first
// occurrence with the title of its last.
func dedupeHires(hires []Hire, key func(string) string) []Hire {
	pos := make(map[string]int, len(hires))
	var out []Hire
	for _, h := range hires {
		k := key(h.Name)
		if k == "" {
			continue
		}
		if i, ok := pos[k]; ok {
			out[i].Title = h.Title
			continue
		}
		pos[k] = len(out)
		out = append(out, h)
	}
	return out
}
