// Package report saves a diff result to a directory so it can be reviewed
// and applied later without re-running the comparison.
//
// A report directory holds report_manifest.json and events.jsonl, one JSON
// object per event.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kamusis/roster-cli/internal/diff"
)

// FromResult builds a report for res. The manifest's summary, anomalies and
// version are filled in; the caller supplies the rest.
func FromResult(res *diff.Result, m Manifest) *Report {
	m.ReportVersion = Version
	m.Summary = res.Summary()
	m.Anomalies = nil
	for _, p := range res.Anomalies {
		m.Anomalies = append(m.Anomalies, AnomalyEntry{Name: p.Name, Near: append([]string(nil), p.Near...)})
	}

	r := &Report{Manifest: m}
	for _, ev := range res.Events() {
		e := EventEntry{Kind: ev.Kind(), Name: ev.Person()}
		switch ev := ev.(type) {
		case diff.NewHire:
			e.Title = ev.Title
		case diff.Resigned:
			e.Title = ev.Title
		case diff.TitleChanged:
			e.From, e.To = ev.From, ev.To
		case diff.MultipleTitles:
			e.Year1Titles, e.Year2Titles = ev.Year1Titles, ev.Year2Titles
		}
		r.Events = append(r.Events, e)
	}
	return r
}

// Result rebuilds the event collections of a diff result from the saved
// events. Pairing details and unchanged names are not stored and stay
// empty.
func (r *Report) Result() (*diff.Result, error) {
	res := &diff.Result{}
	hires := map[string][]string{}
	resigned := map[string][]string{}
	for i, e := range r.Events {
		switch e.Kind {
		case diff.KindNewHire:
			hires[e.Title] = append(hires[e.Title], e.Name)
		case diff.KindResigned:
			resigned[e.Title] = append(resigned[e.Title], e.Name)
		case diff.KindTitleChanged:
			res.TitleChanges = append(res.TitleChanges, diff.TitleChanged{Name: e.Name, From: e.From, To: e.To})
		case diff.KindMultipleTitles:
			res.MultipleTitles = append(res.MultipleTitles, diff.MultipleTitles{
				Name:        e.Name,
				Year1Titles: e.Year1Titles,
				Year2Titles: e.Year2Titles,
			})
		default:
			return nil, fmt.Errorf("event %d: unknown kind %q", i+1, e.Kind)
		}
	}
	res.NewHires = groups(hires)
	res.Resigned = groups(resigned)
	return res, nil
}

func groups(m map[string][]string) []diff.TitleGroup {
	titles := make([]string, 0, len(m))
	for t := range m {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	var out []diff.TitleGroup
	for _, t := range titles {
		out = append(out, diff.TitleGroup{Title: t, Names: m[t]})
	}
	return out
}

// FileHash returns a sha256 hash (hex) of the file at path, used to record
// which snapshot texts a report was built from.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
