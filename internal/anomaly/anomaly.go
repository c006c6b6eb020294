// Package anomaly flags pairs of names across two snapshots that are close
// but not close enough to be matched: typically the same person garbled by
// OCR or a typo. The diff engine refuses to report such names as hires or
// resignations.
package anomaly

import (
	"sort"

	"github.com/kamusis/roster-cli/internal/similarity"
)

const (
	// DefaultCutoff is looser than the primary match cutoff on purpose.
	DefaultCutoff = 0.75
	// DefaultLimit caps the near-matches recorded per name.
	DefaultLimit = 3
)

// Pair records the near-matches found for one year-1 name.
type Pair struct {
	Name string
	Near []string
}

// Report lists near-match pairs in year-1 name order.
type Report []Pair

// Detect returns, for every name in names1, up to limit names from names2
// scoring at least cutoff that are not the identical string. Names without
// any near-match are omitted.
func Detect(names1, names2 []string, cutoff float64, limit int) Report {
	n1 := append([]string(nil), names1...)
	sort.Strings(n1)
	n2 := append([]string(nil), names2...)
	sort.Strings(n2)

	var out Report
	for _, name := range n1 {
		others := make([]string, 0, len(n2))
		for _, c := range n2 {
			if c != name {
				others = append(others, c)
			}
		}
		matches := similarity.CloseMatches(name, others, limit, cutoff)
		if len(matches) == 0 {
			continue
		}
		p := Pair{Name: name}
		for _, m := range matches {
			p.Near = append(p.Near, m.Candidate)
		}
		out = append(out, p)
	}
	return out
}

// Names returns every name appearing in the report, as a key or a
// near-match, as a set.
func (r Report) Names() map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range r {
		set[p.Name] = struct{}{}
		for _, n := range p.Near {
			set[n] = struct{}{}
		}
	}
	return set
}
