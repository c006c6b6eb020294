package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
)

// Write writes report artifacts to dir.
func Write(dir string, r *Report) error {
	m := r.Manifest
	if m.ReportVersion == 0 {
		m.ReportVersion = Version
	}
	if m.EventsFile == "" {
		m.EventsFile = DefaultEventsFile
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create report dir %s: %w", dir, err)
	}

	// manifest
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	// events jsonl
	ef, err := os.Create(filepath.Join(dir, m.EventsFile))
	if err != nil {
		return fmt.Errorf("cannot create events file: %w", err)
	}
	bw := bufio.NewWriter(ef)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, e := range r.Events {
		if err := enc.Encode(e); err != nil {
			_ = ef.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = ef.Close()
		return err
	}
	return ef.Close()
}

// Save writes r into a temporary sibling of dir and swaps it into place, so
// a reader never sees a half-written report. dir must be missing, empty or
// an earlier report; any other directory is refused untouched.
func Save(dir string, r *Report) error {
	if err := checkReportDir(dir); err != nil {
		return err
	}
	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", parent, err)
	}
	tmpDir, err := os.MkdirTemp(parent, ".report-*")
	if err != nil {
		return fmt.Errorf("cannot create temp report dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := Write(tmpDir, r); err != nil {
		return err
	}
	if err := AtomicSwap(tmpDir, dir); err != nil {
		return fmt.Errorf("cannot install report: %w", err)
	}
	return nil
}

func checkReportDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("cannot inspect %s: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("%s is a file, not a report directory: %w", dir, apperrors.ErrInvalidInput)
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot inspect %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%s is not empty and holds no %s, refusing to replace it: %w",
			dir, ManifestFile, apperrors.ErrInvalidInput)
	}
	return nil
}

// AtomicSwap replaces destDir with srcDir, keeping the previous destDir
// until the rename succeeds. The previous contents are parked next to
// srcDir, never under a name the caller might own.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := filepath.Clean(srcDir) + ".old"
	moved := false
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
		moved = true
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if moved {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	if moved {
		_ = os.RemoveAll(backup)
	}
	return nil
}
