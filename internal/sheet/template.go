package sheet

import (
	"fmt"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
)

// DefaultYears is used by Template when no year labels are given.
var DefaultYears = []string{"2023-2024", "2024-2025"}

// Template returns an empty roster with a name column, a department column
// and one column per year label, seeded with a single sample row.
func Template(years []string) (*Table, error) {
	var labels []string
	seen := map[string]bool{}
	for _, y := range years {
		y = strings.TrimSpace(y)
		if y == "" {
			continue
		}
		if seen[y] || y == NameColumn || y == DepartmentColumn {
			return nil, fmt.Errorf("duplicate column %q: %w", y, apperrors.ErrInvalidInput)
		}
		seen[y] = true
		labels = append(labels, y)
	}
	if len(labels) == 0 {
		labels = append(labels, DefaultYears...)
	}

	t := &Table{
		Sheet:   DefaultSheet,
		Columns: append([]string{NameColumn, DepartmentColumn}, labels...),
	}
	t.AppendRow(map[string]string{
		NameColumn:            "Sample Professor",
		DepartmentColumn:      "Engineering",
		labels[0]:             "Professor",
		labels[len(labels)-1]: "Professor",
	}, "")
	return t, nil
}
