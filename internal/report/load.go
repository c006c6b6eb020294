package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
)

// Load reads a report from dir containing manifest + events.
func Load(dir string) (*Report, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, apperrors.ErrInputNotFound)
		}
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", manifestPath, err)
	}
	if m.ReportVersion != Version {
		return nil, fmt.Errorf("unsupported report version %d in %s", m.ReportVersion, manifestPath)
	}
	if m.EventsFile == "" {
		m.EventsFile = DefaultEventsFile
	}

	events, err := loadEvents(filepath.Join(dir, m.EventsFile))
	if err != nil {
		return nil, err
	}
	return &Report{Manifest: m, Events: events}, nil
}

func loadEvents(path string) ([]EventEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open events file %s: %w", path, err)
	}
	defer f.Close()

	var out []EventEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e EventEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("invalid events JSONL %s: %w", path, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read events file %s: %w", path, err)
	}
	return out, nil
}
