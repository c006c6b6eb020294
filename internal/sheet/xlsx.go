package sheet

import (
	"fmt"
	"io"
	"slices"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads DefaultSheet when the workbook has one, else the first
// sheet.
func readXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", apperrors.ErrEmptySheet)
	}
	name := sheets[0]
	if slices.Contains(sheets, DefaultSheet) {
		name = DefaultSheet
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", name, err)
	}
	return fromRecords(name, rows)
}

func writeXLSX(t *Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	name := t.Sheet
	if name == "" {
		name = DefaultSheet
	}
	if name != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, name); err != nil {
			return fmt.Errorf("cannot name sheet %q: %w", name, err)
		}
	}
	if err := setRow(f, name, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("cannot write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheetName string, rowNum int, cells []string) error {
	for col, v := range cells {
		if v == "" {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, ref, v); err != nil {
			return fmt.Errorf("cannot set %s: %w", ref, err)
		}
	}
	return nil
}
