package report

import "github.com/kamusis/roster-cli/internal/diff"

// Version is the on-disk layout version written to new reports.
const Version = 1

const (
	ManifestFile      = "report_manifest.json"
	DefaultEventsFile = "events.jsonl"
)

// Manifest describes a saved report and how it was produced.
type Manifest struct {
	ReportVersion int     `json:"report_version"`
	CreatedAt     string  `json:"created_at"`
	Year1         string  `json:"year1"`
	Year2         string  `json:"year2"`
	Year1Hash     string  `json:"year1_hash,omitempty"`
	Year2Hash     string  `json:"year2_hash,omitempty"`
	MatchCutoff   float64 `json:"match_cutoff"`
	AnomalyCutoff float64 `json:"anomaly_cutoff"`
	AnomalyLimit  int     `json:"anomaly_limit"`

	Summary   diff.Summary   `json:"summary"`
	Anomalies []AnomalyEntry `json:"anomalies,omitempty"`

	EventsFile string `json:"events_file"`
}

// AnomalyEntry is one near-match pair kept for review.
type AnomalyEntry struct {
	Name string   `json:"name"`
	Near []string `json:"near"`
}

// EventEntry represents one event row in events.jsonl.
type EventEntry struct {
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Year1Titles []string `json:"year1_titles,omitempty"`
	Year2Titles []string `json:"year2_titles,omitempty"`
}

// Report is a loaded or freshly built report.
type Report struct {
	Manifest Manifest
	Events   []EventEntry
}
