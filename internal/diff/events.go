package diff

import (
	"github.com/kamusis/roster-cli/internal/anomaly"
)

// Event is one classified change between two snapshots. The concrete types
// are NewHire, Resigned, TitleChanged and MultipleTitles.
type Event interface {
	// Kind is a stable lowercase label used in reports.
	Kind() string
	// Person is the name the event is about.
	Person() string
	event()
}

// NewHire is a year-2 name with no match in year 1.
type NewHire struct {
	Name  string
	Title string
}

// Resigned is a year-1 name with no match in year 2.
type Resigned struct {
	Name  string
	Title string
}

// TitleChanged is a matched pair holding one title in each year, and the
// titles differ.
type TitleChanged struct {
	Name string
	From string
	To   string
}

// MultipleTitles is a matched pair where at least one side lists the person
// under more than one title. It is reported for review, not resolved.
type MultipleTitles struct {
	Name        string
	Year1Titles []string
	Year2Titles []string
}

const (
	KindNewHire        = "new_hire"
	KindResigned       = "resigned"
	KindTitleChanged   = "title_change"
	KindMultipleTitles = "multiple_titles"
)

func (NewHire) Kind() string        { return KindNewHire }
func (Resigned) Kind() string       { return KindResigned }
func (TitleChanged) Kind() string   { return KindTitleChanged }
func (MultipleTitles) Kind() string { return KindMultipleTitles }

func (e NewHire) Person() string        { return e.Name }
func (e Resigned) Person() string       { return e.Name }
func (e TitleChanged) Person() string   { return e.Name }
func (e MultipleTitles) Person() string { return e.Name }

func (NewHire) event()        {}
func (Resigned) event()       {}
func (TitleChanged) event()   {}
func (MultipleTitles) event() {}

// TitleGroup lists names under one title, in roster order.
type TitleGroup struct {
	Title string
	Names []string
}

// Pair links a year-1 name to the year-2 spelling it was matched with.
type Pair struct {
	Year1 string
	Year2 string
}

// Result is the outcome of comparing two snapshots.
type Result struct {
	NewHires       []TitleGroup // sorted by title
	Resigned       []TitleGroup // sorted by title
	TitleChanges   []TitleChanged
	MultipleTitles []MultipleTitles

	// Pairs is the one-to-one pairing, in year-1 name order.
	Pairs []Pair
	// Unchanged lists year-1 names paired with a counterpart holding the
	// same single title.
	Unchanged []string
	// Anomalies are the near-match pairs used to suppress hires and
	// resignations.
	Anomalies anomaly.Report
	// Suppressed names would have been a hire or resignation but appear in
	// the anomaly set.
	Suppressed []string
	// Unpaired names lost the one-to-one pairing but still match a name in
	// the other year, so they are neither hired nor resigned.
	Unpaired []string
}

// Events flattens the result into resignations, title changes, new hires
// and multiple-title entries, in that order.
func (r *Result) Events() []Event {
	var out []Event
	for _, g := range r.Resigned {
		for _, n := range g.Names {
			out = append(out, Resigned{Name: n, Title: g.Title})
		}
	}
	for _, c := range r.TitleChanges {
		out = append(out, c)
	}
	for _, g := range r.NewHires {
		for _, n := range g.Names {
			out = append(out, NewHire{Name: n, Title: g.Title})
		}
	}
	for _, m := range r.MultipleTitles {
		out = append(out, m)
	}
	return out
}

// Summary counts the entries of each category.
type Summary struct {
	NewHires       int `json:"new_hires"`
	Resigned       int `json:"resigned"`
	TitleChanges   int `json:"title_changes"`
	MultipleTitles int `json:"multiple_titles"`
	Unchanged      int `json:"unchanged"`
	Anomalies      int `json:"anomalies"`
	Suppressed     int `json:"suppressed"`
}

func (r *Result) Summary() Summary {
	return Summary{
		NewHires:       countNames(r.NewHires),
		Resigned:       countNames(r.Resigned),
		TitleChanges:   len(r.TitleChanges),
		MultipleTitles: len(r.MultipleTitles),
		Unchanged:      len(r.Unchanged),
		Anomalies:      len(r.Anomalies),
		Suppressed:     len(r.Suppressed),
	}
}

// Empty reports whether the comparison found no event at all.
func (r *Result) Empty() bool {
	return len(r.NewHires) == 0 && len(r.Resigned) == 0 &&
		len(r.TitleChanges) == 0 && len(r.MultipleTitles) == 0
}

func countNames(groups []TitleGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Names)
	}
	return n
}
