// Package match finds the best fuzzy counterpart for a faculty name.
//
// Best is a stateless lookup. Pool layers the one-to-one discipline on top:
// a candidate chosen once is gone for every later lookup, so two names can
// never claim the same counterpart. Assignment is greedy and depends on the
// order names are offered to the pool; callers offer them in sorted order so
// runs are reproducible. This is not a globally optimal bipartite matching.
package match

import (
	"slices"
	"sort"
	"strings"

	"github.com/kamusis/roster-cli/internal/similarity"
)

// DefaultCutoff is the minimum score for a primary match. It admits
// near-exact variants such as a missing middle initial or suffix.
const DefaultCutoff = 0.85

// Best returns the candidate most similar to name with a score of at least
// cutoff. Name and candidates are compared trimmed; the returned value is the
// candidate as given. When several candidates share the top score the first
// one in pool order wins.
func Best(name string, pool []string, cutoff float64) (string, bool) {
	name = strings.TrimSpace(name)
	best, bestScore, found := "", 0.0, false
	for _, c := range pool {
		s := similarity.Ratio(strings.TrimSpace(c), name)
		if s < cutoff {
			continue
		}
		if !found || s > bestScore {
			best, bestScore, found = c, s, true
		}
	}
	return best, found
}

// Pool is the set of candidates still available for matching.
type Pool struct {
	available []string
}

// NewPool returns a pool over the distinct candidates, sorted.
func NewPool(candidates []string) *Pool {
	av := append([]string(nil), candidates...)
	sort.Strings(av)
	return &Pool{available: slices.Compact(av)}
}

// Take matches name against the remaining candidates and removes the winner.
func (p *Pool) Take(name string, cutoff float64) (string, bool) {
	m, ok := Best(name, p.available, cutoff)
	if !ok {
		return "", false
	}
	i := slices.Index(p.available, m)
	p.available = slices.Delete(p.available, i, i+1)
	return m, true
}

// Remaining lists the candidates not yet taken, sorted.
func (p *Pool) Remaining() []string {
	return append([]string(nil), p.available...)
}

func (p *Pool) Len() int {
	return len(p.available)
}
