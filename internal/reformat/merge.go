package reformat

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// merger joins directory entries that were wrapped over several lines. A
// new entry starts at a line shaped like "SURNAME, Given names, Title...".
// Input that arrives as one huge line is split at every such shape instead.
type merger struct {
	start    *regexp.Regexp
	finder   *regexp.Regexp
	excluded []*regexp.Regexp
}

const (
	surnameMc = `(?:Mc|Mac)[A-Z][a-zA-Z]+`
	surnameO  = `O['\x{2019}` + "`" + `][A-Z][a-zA-Z]+`
	surnameUC = `[A-Z][\p{Lu}\-\x{2013}\x{2014}'\s]*\p{Lu}+`
)

func newMerger() *merger {
	m := &merger{
		start: regexp.MustCompile(`^(?:` + surnameMc + `|` + surnameO + `|` + surnameUC + `)` +
			`,\s*[A-Z][A-Za-z.\-\s()]*[A-Za-z.],\s+[A-Za-z]`),
		finder: regexp.MustCompile(`(?:` + surnameMc + `|` + surnameO + `|` + surnameUC + `),\s*[A-Z][A-Za-z.\-\s()]*,`),
	}
	for _, p := range []string{
		`^(Assistant|Associate|Assoc\.|Asst\.)\s+`,
		`^(Director|Dir\.|Manager|Mgr\.)\s+`,
		`^(Specialist|Coordinator|Admin)\s+`,
		`^(Extension|Ext\.|External)\s+`,
		`^(Emeritus|Emerita)\s+`,
		`^(Professor|Prof\.|Instructor|Instr\.)\s+`,
		`^(Engineering|Sciences|Business|Education)\s+`,
		`^(Department|Dept\.|Division|Div\.)\s+`,
		`^(County|Co\.|State|St\.)\s+`,
		`^(Agent|Representative|Rep\.)\s+`,
	} {
		m.excluded = append(m.excluded, regexp.MustCompile(`(?i)`+p))
	}
	return m
}

func (*merger) Name() string { return "merge" }

func (m *merger) Format(r io.Reader, w io.Writer) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("cannot read input: %w", err)
	}
	content := strings.TrimSpace(string(b))
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")

	var entries []string
	if singleLine(content, lines) {
		entries = m.split(content)
	} else {
		entries = m.merge(lines)
	}

	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintln(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func singleLine(content string, lines []string) bool {
	if len(lines) == 1 && len(lines[0]) > 500 {
		return true
	}
	if len(lines) <= 3 && len(content) > 1000 {
		for _, l := range lines {
			if len(l) > 1000 {
				return true
			}
		}
	}
	return false
}

func (m *merger) merge(lines []string) []string {
	var entries, cur []string
	flush := func() {
		if len(cur) > 0 {
			entries = append(entries, strings.Join(cur, " "))
		}
	}
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		if m.isEntryStart(line) {
			flush()
			cur = []string{line}
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return entries
}

func (m *merger) split(content string) []string {
	locs := m.finder.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return []string{content}
	}
	starts := make([]int, 0, len(locs)+1)
	if locs[0][0] != 0 {
		starts = append(starts, 0)
	}
	for _, l := range locs {
		starts = append(starts, l[0])
	}
	var entries []string
	for i, s := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if e := strings.TrimSpace(content[s:end]); e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func (m *merger) isEntryStart(line string) bool {
	line = strings.TrimSpace(line)
	if !m.start.MatchString(line) {
		return false
	}
	for _, ex := range m.excluded {
		if ex.MatchString(line) {
			return false
		}
	}
	surname, _, _ := strings.Cut(line, ",")
	surname = strings.TrimSpace(surname)
	switch {
	case strings.HasPrefix(surname, "Mc") || strings.HasPrefix(surname, "Mac"):
		return len(surname) >= 5
	case strings.HasPrefix(surname, "O'") || strings.HasPrefix(surname, "O\u2019") || strings.HasPrefix(surname, "O`"):
		return len([]rune(surname)) >= 4
	}
	upper, alpha := 0, 0
	for _, c := range surname {
		if unicode.IsLetter(c) {
			alpha++
			if unicode.IsUpper(c) {
				upper++
			}
		}
	}
	// Mostly capitals; hyphens and apostrophes are ignored.
	return len(surname) >= 2 && alpha > 0 && float64(upper)/float64(alpha) >= 0.7
}
