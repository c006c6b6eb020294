package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/outfile"
	"github.com/kamusis/roster-cli/internal/reformat"
	"github.com/spf13/cobra"
)

var (
	flagFormatStyle  string
	flagFormatKeep   []string
	flagFormatOutput string
)

var formatCmd = &cobra.Command{
	Use:   "format <directory.txt|->",
	Short: "Reshape a raw directory dump into snapshot text",
	Long: `Reshape text copied from a faculty directory page.

Styles:
  merge    join wrapped lines so each person is on one line
  ranked   turn "Last, First, ..., Rank, ..." records into "Title: names" lines
  filter   keep only lines containing one of the --keep keywords

Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringVar(&flagFormatStyle, "style", "", "Formatter: "+strings.Join(reformat.Names(), ", ")+" (required)")
	formatCmd.Flags().StringSliceVar(&flagFormatKeep, "keep", nil, "Keep only lines containing one of these keywords")
	formatCmd.Flags().StringVarP(&flagFormatOutput, "output", "o", "", "Write to a new file instead of stdout")
	_ = formatCmd.MarkFlagRequired("style")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	f, err := reformat.Lookup(flagFormatStyle, reformat.Options{Keep: flagFormatKeep})
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("cannot open %s: %w", args[0], apperrors.ErrInputNotFound)
			}
			return fmt.Errorf("cannot open %s: %w", args[0], err)
		}
		defer file.Close()
		in = file
	}

	if flagFormatOutput == "" {
		return f.Format(in, stdout)
	}
	written, err := outfile.Write(flagFormatOutput, outfile.DefaultLockTimeout, func(w io.Writer) error {
		return f.Format(in, w)
	})
	if err != nil {
		return err
	}
	printOK(f.Name(), fmt.Sprintf("written: %s", written))
	return nil
}
