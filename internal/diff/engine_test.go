package diff

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/kamusis/roster-cli/internal/anomaly"
	"github.com/kamusis/roster-cli/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, text string) *roster.Roster {
	t.Helper()
	r, err := roster.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return r
}

func TestCompare_TitleChange(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith"}})
	r2 := roster.FromMap(map[string][]string{"Associate Professor": {"Jane Smith"}})

	res := New().Compare(r1, r2)

	assert.Equal(t, []TitleChanged{{Name: "Jane Smith", From: "Professor", To: "Associate Professor"}}, res.TitleChanges)
	assert.Empty(t, res.NewHires)
	assert.Empty(t, res.Resigned)
	assert.Empty(t, res.MultipleTitles)
}

func TestCompare_Resignation(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith"}})
	r2 := roster.FromMap(map[string][]string{})

	res := New().Compare(r1, r2)

	assert.Equal(t, []TitleGroup{{Title: "Professor", Names: []string{"Jane Smith"}}}, res.Resigned)
	assert.Empty(t, res.Anomalies)
	assert.Equal(t, []Event{Resigned{Name: "Jane Smith", Title: "Professor"}}, res.Events())
}

func TestCompare_NearMatchIsSuppressed(t *testing.T) {
	// 0.842: not a match, but close enough to be a misspelling.
	r1 := roster.FromMap(map[string][]string{"Professor": {"John Smith"}})
	r2 := roster.FromMap(map[string][]string{"Professor": {"Jon Smyth"}})

	res := New().Compare(r1, r2)

	assert.Empty(t, res.Resigned)
	assert.Empty(t, res.NewHires)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, anomaly.Report{{Name: "John Smith", Near: []string{"Jon Smyth"}}}, res.Anomalies)
	assert.Equal(t, []string{"John Smith", "Jon Smyth"}, res.Suppressed)
	assert.True(t, res.Empty())
}

func TestCompare_UnchangedProducesNoEvent(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith"}})
	r2 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith "}})

	res := New().Compare(r1, r2)

	assert.Empty(t, res.Events())
	assert.Equal(t, []string{"Jane Smith"}, res.Unchanged)
}

func TestCompare_VariantSpellingIsPaired(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"Jane Smyth"}})
	r2 := roster.FromMap(map[string][]string{"Associate Professor": {"Jane Smith"}})

	res := New().Compare(r1, r2)

	assert.Equal(t, []Pair{{Year1: "Jane Smyth", Year2: "Jane Smith"}}, res.Pairs)
	assert.Equal(t, []TitleChanged{{Name: "Jane Smyth", From: "Professor", To: "Associate Professor"}}, res.TitleChanges)
	assert.Empty(t, res.NewHires)
	assert.Empty(t, res.Resigned)
}

func TestCompare_MultipleTitles(t *testing.T) {
	r1 := snapshot(t, "Professor: Jane Smith\nDepartment Chair: Jane Smith\n")
	r2 := snapshot(t, "Professor: Jane Smith\n")

	res := New().Compare(r1, r2)

	want := []MultipleTitles{{
		Name:        "Jane Smith",
		Year1Titles: []string{"Professor", "Department Chair"},
		Year2Titles: []string{"Professor"},
	}}
	assert.Equal(t, want, res.MultipleTitles)
	assert.Empty(t, res.Resigned)
	assert.Empty(t, res.TitleChanges)
	assert.Empty(t, res.Unchanged)
}

const (
	year1Text = `Professor: Jane Smith, Carol King
Associate Professor: Bob Stone, Eve Adams
Lecturer: David Lee
`
	year2Text = `Professor: Jane Smith, Eve Adams, Carol King
Department Chair: Carol King
Associate Professor: Robert Stone
Assistant Professor: Alice Wong, Frank Ocean
`
)

func TestCompare_Department(t *testing.T) {
	res := New().Compare(snapshot(t, year1Text), snapshot(t, year2Text))

	want := &Result{
		NewHires: []TitleGroup{{Title: "Assistant Professor", Names: []string{"Alice Wong", "Frank Ocean"}}},
		Resigned: []TitleGroup{{Title: "Lecturer", Names: []string{"David Lee"}}},
		TitleChanges: []TitleChanged{
			{Name: "Eve Adams", From: "Associate Professor", To: "Professor"},
		},
		MultipleTitles: []MultipleTitles{{
			Name:        "Carol King",
			Year1Titles: []string{"Professor"},
			Year2Titles: []string{"Professor", "Department Chair"},
		}},
		Pairs: []Pair{
			{Year1: "Carol King", Year2: "Carol King"},
			{Year1: "Eve Adams", Year2: "Eve Adams"},
			{Year1: "Jane Smith", Year2: "Jane Smith"},
		},
		Unchanged:  []string{"Jane Smith"},
		Anomalies:  anomaly.Report{{Name: "Bob Stone", Near: []string{"Robert Stone"}}},
		Suppressed: []string{"Bob Stone", "Robert Stone"},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("Compare mismatch (-want +got):\n%s", diff)
	}

	kinds := make([]string, 0)
	for _, e := range res.Events() {
		kinds = append(kinds, e.Kind()+":"+e.Person())
	}
	assert.Equal(t, []string{
		"resigned:David Lee",
		"title_change:Eve Adams",
		"new_hire:Alice Wong",
		"new_hire:Frank Ocean",
		"multiple_titles:Carol King",
	}, kinds)

	assert.Equal(t, Summary{
		NewHires: 2, Resigned: 1, TitleChanges: 1, MultipleTitles: 1,
		Unchanged: 1, Anomalies: 1, Suppressed: 2,
	}, res.Summary())
}

// The hire and resignation checks do not reuse the one-to-one pairing. A
// year-1 name that loses its counterpart to a closer spelling matches it
// again in the resignation check, so it is neither paired nor resigned.
func TestCompare_LosingPairingIsNotAResignation(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith", "Jane Smyth"}})
	r2 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith"}})

	res := New().Compare(r1, r2)

	assert.Equal(t, []Pair{{Year1: "Jane Smith", Year2: "Jane Smith"}}, res.Pairs)
	assert.Empty(t, res.Resigned)
	assert.Empty(t, res.Suppressed)
	assert.Equal(t, []string{"Jane Smyth"}, res.Unpaired)
}

func TestCompare_LosingPairingIsNotAHire(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith"}})
	r2 := roster.FromMap(map[string][]string{"Professor": {"Jane Smith", "Jane Smyth"}})

	res := New().Compare(r1, r2)

	assert.Empty(t, res.NewHires)
	assert.Equal(t, []string{"Jane Smyth"}, res.Unpaired)
}

func TestCompare_MatchCutoffOption(t *testing.T) {
	r1 := roster.FromMap(map[string][]string{"Professor": {"John Smith"}})
	r2 := roster.FromMap(map[string][]string{"Professor": {"Jon Smyth"}})

	res := New(WithMatchCutoff(0.8)).Compare(r1, r2)

	assert.Equal(t, []Pair{{Year1: "John Smith", Year2: "Jon Smyth"}}, res.Pairs)
	assert.Equal(t, []string{"John Smith"}, res.Unchanged)
}

func TestCompare_EmptyRosters(t *testing.T) {
	res := New().Compare(roster.New(), roster.New())

	assert.True(t, res.Empty())
	assert.Empty(t, res.Events())
	assert.Equal(t, Summary{}, res.Summary())
}

var (
	firstNames = []string{"Jane", "Jon", "John", "Bob", "Robert", "Carol", "Eve", "Ann", "Anne", "Li", "Lee"}
	lastNames  = []string{"Smith", "Smyth", "Stone", "King", "Adams", "Lee", "Wong", "Wang", "Ng"}
	titles     = []string{"Professor", "Associate Professor", "Assistant Professor", "Lecturer"}
)

func randomRoster(rng *rand.Rand) *roster.Roster {
	r := roster.New()
	n := rng.Intn(12)
	for i := 0; i < n; i++ {
		name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
		r.Add(titles[rng.Intn(len(titles))], name)
	}
	return r
}

func TestCompare_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		r1, r2 := randomRoster(rng), randomRoster(rng)
		res := New().Compare(r1, r2)
		label := fmt.Sprintf("run %d", i)

		// Pairing is injective.
		seen := map[string]bool{}
		for _, p := range res.Pairs {
			require.False(t, seen[p.Year2], "%s: %q paired twice", label, p.Year2)
			seen[p.Year2] = true
		}

		// Every year-1 name lands in exactly one bucket.
		names1 := r1.AllNames()
		in1 := map[string]bool{}
		for _, n := range names1 {
			in1[n] = true
		}
		count := map[string]int{}
		resigned := map[string]bool{}
		for _, g := range res.Resigned {
			for _, n := range g.Names {
				resigned[n] = true // one entry per title held
			}
		}
		for n := range resigned {
			count[n]++
		}
		for _, c := range res.TitleChanges {
			count[c.Name]++
		}
		for _, m := range res.MultipleTitles {
			count[m.Name]++
		}
		for _, n := range res.Unchanged {
			count[n]++
		}
		for _, n := range append(append([]string(nil), res.Suppressed...), res.Unpaired...) {
			if in1[n] {
				count[n]++
			}
		}
		got := make([]string, 0, len(count))
		for n, c := range count {
			require.Equal(t, 1, c, "%s: %q classified %d times", label, n, c)
			got = append(got, n)
		}
		if diff := cmp.Diff(names1, got, cmpopts.SortSlices(func(a, b string) bool { return a < b }), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("%s: year-1 names not partitioned (-want +got):\n%s", label, diff)
		}

		// Nothing in the anomaly set is reported as hired or resigned.
		unusual := res.Anomalies.Names()
		for _, e := range res.Events() {
			switch e.(type) {
			case NewHire, Resigned:
				_, bad := unusual[e.Person()]
				require.False(t, bad, "%s: %s %q is in the anomaly set", label, e.Kind(), e.Person())
			}
		}
	}
}
