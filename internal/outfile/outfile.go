// Package outfile allocates output files that never overwrite an existing
// file. The first free name among path, stem_1.ext, stem_2.ext, ... is
// claimed with an exclusive create, and allocation is serialized across
// processes with a per-user lock file.
package outfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/logger"
)

// DefaultLockTimeout bounds how long Create waits for another process to
// finish allocating.
const DefaultLockTimeout = 10 * time.Second

const maxSuffix = 9999

// Create claims the first free name derived from path and returns the open
// file. The caller closes it.
func Create(path string, timeout time.Duration) (*os.File, error) {
	release, err := acquireLock(timeout)
	if err != nil {
		// Exclusive create alone is still collision-free.
		logger.WithComponent("outfile").Warn("output lock unavailable", "error", err)
	} else {
		defer release()
	}

	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i <= maxSuffix; i++ {
		p := path
		if i > 0 {
			p = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		}
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return nil, Classify(err, p)
	}
	return nil, fmt.Errorf("cannot find a free name for %s after %d attempts", path, maxSuffix)
}

// Write creates a new file for path, fills it with write and returns the
// name actually used. A failed write removes the partial file.
func Write(path string, timeout time.Duration, write func(io.Writer) error) (string, error) {
	f, err := Create(path, timeout)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := write(f); err != nil {
		_ = f.Close()
		_ = removePartial(name)
		return "", Classify(err, name)
	}
	if err := f.Close(); err != nil {
		_ = removePartial(name)
		return "", Classify(err, name)
	}
	return name, nil
}

// Classify turns permission and sharing errors into ErrFilePermission with
// an actionable message. Other errors are returned unchanged.
func Classify(err error, path string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrFilePermission) {
		return err
	}
	if errors.Is(err, fs.ErrPermission) || isLockViolation(err) {
		return apperrors.Newf(apperrors.ErrFilePermission, http.StatusLocked,
			"cannot write %s: file may be open in another application", path)
	}
	return err
}

func acquireLock(timeout time.Duration) (func(), error) {
	lockPath, err := LockPath()
	if err != nil {
		return nil, err
	}
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire output lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another process is allocating output files (lock: %s)", lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// LockPath determines the per-user lock path shared by all roster
// processes.
func LockPath() (string, error) {
	if cacheDir, err := os.UserCacheDir(); err == nil && cacheDir != "" {
		dir := filepath.Join(cacheDir, "roster")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, "output.lock"), nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dir := filepath.Join(home, ".roster")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return filepath.Join(dir, "output.lock"), nil
		}
	}
	return "", fmt.Errorf("cannot determine writable lock directory")
}
