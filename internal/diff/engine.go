// Package diff classifies what happened to each faculty member between two
// yearly snapshots.
//
// Compare runs in fixed steps:
//
//  1. Index both rosters by name.
//  2. Pair every year-1 name, in lexicographic order, with the best remaining
//     year-2 name (one-to-one, greedy).
//  3. Each pair becomes a MultipleTitles entry if either side holds several
//     titles, a TitleChanged entry if the titles differ, or nothing.
//  4. A year-2 name with no match among all year-1 names is a NewHire.
//  5. A year-1 name outside the title change and multiple-title entries with
//     no match among all year-2 names is Resigned.
//  6. Hires and resignations whose name is in the anomaly set are dropped.
//
// Steps 4 and 5 match against the complete opposite name set, not the
// pairing from step 2. A name that lost the pairing to a closer spelling is
// therefore neither hired nor resigned; it is listed in Result.Unpaired.
package diff

import (
	"sort"

	"github.com/kamusis/roster-cli/internal/anomaly"
	"github.com/kamusis/roster-cli/internal/logger"
	"github.com/kamusis/roster-cli/internal/match"
	"github.com/kamusis/roster-cli/internal/roster"
)

// Engine holds the cutoffs used by Compare. The zero value is not useful;
// build one with New.
type Engine struct {
	MatchCutoff   float64
	AnomalyCutoff float64
	AnomalyLimit  int
}

// Option adjusts an Engine built by New.
type Option func(*Engine)

// WithMatchCutoff sets the minimum ratio for pairing a name across years.
func WithMatchCutoff(c float64) Option {
	return func(e *Engine) { e.MatchCutoff = c }
}

// WithAnomalyCutoff sets the lower bound of the near-match band.
func WithAnomalyCutoff(c float64) Option {
	return func(e *Engine) { e.AnomalyCutoff = c }
}

// WithAnomalyLimit caps the near matches kept per name.
func WithAnomalyLimit(n int) Option {
	return func(e *Engine) { e.AnomalyLimit = n }
}

// New returns an engine with the default cutoffs, adjusted by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		MatchCutoff:   match.DefaultCutoff,
		AnomalyCutoff: anomaly.DefaultCutoff,
		AnomalyLimit:  anomaly.DefaultLimit,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Compare diffs year-1 roster r1 against year-2 roster r2. It never fails:
// data-quality problems only shrink the result.
func (e *Engine) Compare(r1, r2 *roster.Roster) *Result {
	x1 := roster.NewNameIndex(r1)
	x2 := roster.NewNameIndex(r2)
	names1 := x1.Names()
	names2 := x2.Names()

	res := &Result{}

	// Pairing.
	pool := match.NewPool(names2)
	paired := make(map[string]bool, len(names1))
	taken := make(map[string]bool, len(names2))
	claimed := make(map[string]bool)
	for _, n1 := range names1 {
		n2, ok := pool.Take(n1, e.MatchCutoff)
		if !ok {
			continue
		}
		paired[n1] = true
		taken[n2] = true
		res.Pairs = append(res.Pairs, Pair{Year1: n1, Year2: n2})

		a1, _ := x1.Lookup(n1)
		a2, _ := x2.Lookup(n2)
		t1, single1 := a1.(roster.SingleTitle)
		t2, single2 := a2.(roster.SingleTitle)
		switch {
		case !single1 || !single2:
			res.MultipleTitles = append(res.MultipleTitles, MultipleTitles{
				Name:        n1,
				Year1Titles: a1.Titles(),
				Year2Titles: a2.Titles(),
			})
			claimed[n1] = true
		case t1 != t2:
			res.TitleChanges = append(res.TitleChanges, TitleChanged{Name: n1, From: string(t1), To: string(t2)})
			claimed[n1] = true
		default:
			res.Unchanged = append(res.Unchanged, n1)
		}
	}

	// Independent hire and resignation checks against the full name sets.
	var hires, resigned []TitleGroup
	unpaired := make(map[string]struct{})
	for _, title := range r2.Titles() {
		var names []string
		for _, n := range r2.Names(title) {
			if _, ok := match.Best(n, names1, e.MatchCutoff); ok {
				if !taken[n] {
					unpaired[n] = struct{}{}
				}
				continue
			}
			names = append(names, n)
		}
		hires = appendGroup(hires, title, names)
	}
	for _, title := range r1.Titles() {
		var names []string
		for _, n := range r1.Names(title) {
			if claimed[n] {
				continue
			}
			if _, ok := match.Best(n, names2, e.MatchCutoff); ok {
				if !paired[n] {
					unpaired[n] = struct{}{}
				}
				continue
			}
			names = append(names, n)
		}
		resigned = appendGroup(resigned, title, names)
	}

	res.Anomalies = anomaly.Detect(names1, names2, e.AnomalyCutoff, e.AnomalyLimit)
	unusual := res.Anomalies.Names()
	suppressed := make(map[string]struct{})
	res.NewHires = dropUnusual(hires, unusual, suppressed)
	res.Resigned = dropUnusual(resigned, unusual, suppressed)
	res.Suppressed = sortedKeys(suppressed)
	res.Unpaired = sortedKeys(unpaired)

	sort.Slice(res.NewHires, func(i, j int) bool { return res.NewHires[i].Title < res.NewHires[j].Title })
	sort.Slice(res.Resigned, func(i, j int) bool { return res.Resigned[i].Title < res.Resigned[j].Title })

	logger.WithComponent("diff").Debug("compared snapshots",
		"year1_names", len(names1),
		"year2_names", len(names2),
		"paired", len(paired),
		"anomalies", len(res.Anomalies),
		"suppressed", len(res.Suppressed),
	)
	return res
}

// appendGroup adds a group for title unless names is empty. A name listed
// twice under the same title is kept once.
func appendGroup(groups []TitleGroup, title string, names []string) []TitleGroup {
	if len(names) == 0 {
		return groups
	}
	seen := make(map[string]bool, len(names))
	uniq := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	return append(groups, TitleGroup{Title: title, Names: uniq})
}

func dropUnusual(groups []TitleGroup, unusual, dropped map[string]struct{}) []TitleGroup {
	var out []TitleGroup
	for _, g := range groups {
		var keep []string
		for _, n := range g.Names {
			if _, ok := unusual[n]; ok {
				dropped[n] = struct{}{}
				continue
			}
			keep = append(keep, n)
		}
		if len(keep) > 0 {
			out = append(out, TitleGroup{Title: g.Title, Names: keep})
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
