// Package reformat holds the small per-source transforms that turn scraped
// directory text into the canonical "Title: Name1, Name2" lines read by the
// roster parser. Each formatter handles one layout; they share nothing but
// the interface.
package reformat

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
)

// Formatter rewrites raw directory text.
type Formatter interface {
	Name() string
	Format(r io.Reader, w io.Writer) error
}

// Options configures a formatter. Keep, when set, drops every input line
// that contains none of the keywords (case-insensitive).
type Options struct {
	Keep []string
}

var registry = map[string]func(Options) Formatter{
	"filter": func(o Options) Formatter { return &keywordFilter{keep: o.Keep} },
	"merge":  func(Options) Formatter { return newMerger() },
	"ranked": func(o Options) Formatter { return &ranked{keep: o.Keep} },
}

// Lookup returns the named formatter.
func Lookup(name string, opts Options) (Formatter, error) {
	mk, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown format style %q (want one of %s): %w",
			name, strings.Join(Names(), ", "), apperrors.ErrUnsupportedFormat)
	}
	return mk(opts), nil
}

// Names lists the registered formatters, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func keeps(line string, keep []string) bool {
	if len(keep) == 0 {
		return true
	}
	l := strings.ToLower(line)
	for _, k := range keep {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(l, k) {
			return true
		}
	}
	return false
}

type keywordFilter struct {
	keep []string
}

func (*keywordFilter) Name() string { return "filter" }

func (f *keywordFilter) Format(r io.Reader, w io.Writer) error {
	if len(f.keep) == 0 {
		return fmt.Errorf("filter needs at least one keyword: %w", apperrors.ErrInvalidInput)
	}
	bw := bufio.NewWriter(w)
	err := eachLine(r, func(line string) error {
		line = strings.TrimRight(line, " \t\r")
		if line == "" || !keeps(line, f.keep) {
			return nil
		}
		_, err := fmt.Fprintln(bw, line)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func eachLine(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read input: %w", err)
	}
	return nil
}
