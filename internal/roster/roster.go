// Package roster parses canonical faculty directory text ("Title: Name1,
// Name2, ...") into an ordered title -> names mapping and derives the
// name -> appointment view used by the diff engine.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/logger"
	"golang.org/x/text/unicode/norm"
)

// Separator splits the title from the name list on a directory line.
const Separator = ":"

const maxLineBytes = 4 * 1024 * 1024

// Roster is one parsed snapshot. Titles keep first-encounter order and each
// title keeps its names in source order.
type Roster struct {
	titles  []string
	names   map[string][]string
	skipped int
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{names: make(map[string][]string)}
}

// FromMap builds a roster from a title -> names map. Titles are added in
// sorted order since map iteration order is not stable.
func FromMap(m map[string][]string) *Roster {
	titles := make([]string, 0, len(m))
	for t := range m {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	r := New()
	for _, t := range titles {
		r.Add(t, m[t]...)
	}
	return r
}

// Add appends names under title. A title seen again keeps its original
// position; blank names are dropped.
func (r *Roster) Add(title string, names ...string) {
	if _, ok := r.names[title]; !ok {
		r.titles = append(r.titles, title)
		r.names[title] = nil
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		r.names[title] = append(r.names[title], n)
	}
}

// Titles returns the titles in encounter order.
func (r *Roster) Titles() []string {
	return append([]string(nil), r.titles...)
}

// Names returns the names listed under title.
func (r *Roster) Names(title string) []string {
	return append([]string(nil), r.names[title]...)
}

// AllNames returns every distinct name in the roster, sorted.
func (r *Roster) AllNames() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range r.titles {
		for _, n := range r.names[t] {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Len counts name entries, including repeats.
func (r *Roster) Len() int {
	n := 0
	for _, t := range r.titles {
		n += len(r.names[t])
	}
	return n
}

// Empty reports whether the roster holds no names at all.
func (r *Roster) Empty() bool {
	return r.Len() == 0
}

// Skipped is the number of non-blank lines that had no separator.
func (r *Roster) Skipped() int {
	return r.skipped
}

// Parse reads directory text. Lines without a separator are skipped rather
// than failing the whole parse; only read errors are returned.
func Parse(rd io.Reader) (*Roster, error) {
	log := logger.WithComponent("roster")
	r := New()

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		title, rest, ok := strings.Cut(line, Separator)
		if !ok {
			r.skipped++
			log.Debug("skipping line without separator", "line", lineNo)
			continue
		}
		r.Add(normalize(title), splitNames(rest)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read directory text: %w", err)
	}
	return r, nil
}

// ParseFile parses the directory text at path.
func ParseFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot open %s: %w", path, apperrors.ErrInputNotFound)
		}
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalize trims and composes a field so OCR output in decomposed form
// compares equal to the composed spelling.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
