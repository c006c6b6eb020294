package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/kamusis/roster-cli/internal/outfile"
	"github.com/kamusis/roster-cli/internal/sheet"
	"github.com/spf13/cobra"
)

var flagTemplateYears []string

var templateCmd = &cobra.Command{
	Use:   "template <out.xlsx|out.csv>",
	Short: "Create an empty roster spreadsheet with year columns",
	Long: `Create a roster with the columns Faculty name, Department and one column per
year, plus a sample row. An existing file is never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringSliceVar(&flagTemplateYears, "years", sheet.DefaultYears, "Year column labels, comma separated")
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(_ *cobra.Command, args []string) error {
	format, err := sheet.FormatOf(args[0])
	if err != nil {
		return err
	}
	table, err := sheet.Template(flagTemplateYears)
	if err != nil {
		return err
	}
	written, err := outfile.Write(args[0], outfile.DefaultLockTimeout, func(w io.Writer) error {
		return sheet.Save(table, w, format)
	})
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf("template written: %s (%s)", written, strings.Join(sheet.YearColumns(table), ", ")))
	return nil
}
