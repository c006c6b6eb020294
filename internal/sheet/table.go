// Package sheet reads and writes the tabular faculty roster: one header row
// followed by one row per faculty member, every cell kept as a string.
// .xlsx workbooks and .csv files are supported.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
)

const (
	NameColumn       = "Faculty name"
	DepartmentColumn = "Department"
	DefaultSheet     = "Sheet1"
)

// DefaultNameAliases are header spellings accepted for NameColumn.
var DefaultNameAliases = []string{"Faculty Name", "Name", "faculty name", "faculty_name"}

// Table is one sheet held in memory. Every row has len(Columns) cells.
type Table struct {
	Sheet   string
	Columns []string
	Rows    [][]string
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Has(name string) bool {
	return t.Column(name) >= 0
}

// NormalizeNameColumn renames the first header matching NameColumn or one
// of aliases to NameColumn. Matching ignores case, spaces and underscores.
// It reports whether the table now has a name column.
func (t *Table) NormalizeNameColumn(aliases []string) bool {
	if t.Has(NameColumn) {
		return true
	}
	want := map[string]bool{headerKey(NameColumn): true}
	for _, a := range aliases {
		want[headerKey(a)] = true
	}
	for i, c := range t.Columns {
		if want[headerKey(c)] {
			t.Columns[i] = NameColumn
			return true
		}
	}
	return false
}

func headerKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", " ", "").Replace(s)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Sheet:   t.Sheet,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}

// AppendRow adds a row taking cells from values by column name; columns not
// in values get fill.
func (t *Table) AppendRow(values map[string]string, fill string) {
	row := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if v, ok := values[c]; ok {
			row[i] = v
		} else {
			row[i] = fill
		}
	}
	t.Rows = append(t.Rows, row)
}

// YearColumns returns the header labels other than the name and department
// columns, in sheet order.
func YearColumns(t *Table) []string {
	var out []string
	for _, c := range t.Columns {
		if c == NameColumn || c == DepartmentColumn || strings.TrimSpace(c) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// fromRecords turns raw rows into a Table. The first record is the header;
// all rows are padded to the widest record.
func fromRecords(sheetName string, records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, apperrors.ErrEmptySheet
	}
	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}
	t := &Table{Sheet: sheetName, Columns: pad(records[0], width)}
	for i := range t.Columns {
		t.Columns[i] = strings.TrimSpace(t.Columns[i])
	}
	for _, r := range records[1:] {
		t.Rows = append(t.Rows, pad(r, width))
	}
	return t, nil
}

func pad(r []string, width int) []string {
	out := make([]string, width)
	copy(out, r)
	return out
}

// Format names a supported file type by its extension.
type Format string

const (
	XLSX Format = ".xlsx"
	CSV  Format = ".csv"
)

// FormatOf maps a path or bare extension to a Format.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = strings.ToLower(path)
	}
	switch ext {
	case ".xlsx", ".xlsm":
		return XLSX, nil
	case ".csv":
		return CSV, nil
	}
	return "", fmt.Errorf("%q: %w", ext, apperrors.ErrUnsupportedFormat)
}

// Load reads the roster table at path. The file is only read.
func Load(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot open %s: %w", path, apperrors.ErrInputNotFound)
		}
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Read decodes a table from r.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case XLSX:
		return readXLSX(r)
	case CSV:
		return readCSV(r)
	}
	return nil, fmt.Errorf("%q: %w", format, apperrors.ErrUnsupportedFormat)
}

// Save encodes t to w.
func Save(t *Table, w io.Writer, format Format) error {
	switch format {
	case XLSX:
		return writeXLSX(t, w)
	case CSV:
		return writeCSV(t, w)
	}
	return fmt.Errorf("%q: %w", format, apperrors.ErrUnsupportedFormat)
}
