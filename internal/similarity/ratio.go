// Package similarity scores how alike two faculty names are.
//
// The score is the Ratcliff/Obershelp "gestalt" ratio: find the longest
// common block, recurse on the pieces to its left and right, and report
// 2*M/T where M is the number of runes in all matched blocks and T the total
// rune count. Identical strings score 1.0 and strings with nothing in common
// score 0.0. The match cutoffs used elsewhere (0.85 and 0.75) are calibrated
// against this scale.
package similarity

import "sort"

// Ratio returns the gestalt similarity of a and b in [0, 1].
// Two empty strings are identical and score 1.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(newBlockFinder(ra, rb).matched()) / float64(total)
}

// Match is one scored candidate returned by CloseMatches.
type Match struct {
	Candidate string
	Score     float64
}

// CloseMatches scores word against every candidate and returns at most n
// candidates whose score is at least cutoff, best first. Equal scores keep
// the order in which the candidates were given.
func CloseMatches(word string, candidates []string, n int, cutoff float64) []Match {
	if n <= 0 {
		return nil
	}
	var out []Match
	for _, c := range candidates {
		if s := Ratio(c, word); s >= cutoff {
			out = append(out, Match{Candidate: c, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// blockFinder holds the index of b and the scratch rows reused by every
// longest-block search over the same pair of strings.
type blockFinder struct {
	a, b []rune
	b2j  map[rune][]int

	prev, cur               []int
	touchedPrev, touchedCur []int
}

func newBlockFinder(a, b []rune) *blockFinder {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &blockFinder{
		a:    a,
		b:    b,
		b2j:  b2j,
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
}

// matched returns the total size of all matching blocks.
func (f *blockFinder) matched() int {
	type span struct{ alo, ahi, blo, bhi int }
	total := 0
	queue := []span{{0, len(f.a), 0, len(f.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := f.longest(s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longest finds the longest block a[i:i+k] == b[j:j+k] inside the given
// bounds. Among equally long blocks the one starting earliest in a wins, then
// the one starting earliest in b.
//
// prev[j+1] holds the length of the match ending at a[i-1], b[j].
func (f *blockFinder) longest(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestk := alo, blo, 0
	for i := alo; i < ahi; i++ {
		f.touchedCur = f.touchedCur[:0]
		for _, j := range f.b2j[f.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := f.prev[j] + 1
			f.cur[j+1] = k
			f.touchedCur = append(f.touchedCur, j+1)
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		for _, t := range f.touchedPrev {
			f.prev[t] = 0
		}
		f.prev, f.cur = f.cur, f.prev
		f.touchedPrev, f.touchedCur = f.touchedCur, f.touchedPrev
	}
	for _, t := range f.touchedPrev {
		f.prev[t] = 0
	}
	f.touchedPrev = f.touchedPrev[:0]
	return besti, bestj, bestk
}
