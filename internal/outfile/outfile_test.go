package outfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateLock(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
}

func TestCreate_NeverOverwrites(t *testing.T) {
	isolateLock(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "roster_updated_2023_2024.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	want := []string{
		filepath.Join(dir, "roster_updated_2023_2024_1.xlsx"),
		filepath.Join(dir, "roster_updated_2023_2024_2.xlsx"),
	}
	for _, w := range want {
		f, err := Create(path, DefaultLockTimeout)
		require.NoError(t, err)
		assert.Equal(t, w, f.Name())
		require.NoError(t, f.Close())
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(b))
}

func TestCreate_ConcurrentWritersGetDistinctNames(t *testing.T) {
	isolateLock(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	const n = 8
	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := Write(path, DefaultLockTimeout, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "writer %d", i)
				return err
			})
			assert.NoError(t, err)
			names[i] = name
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "name %s handed out twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, n)
}

func TestWrite_RemovesPartialFile(t *testing.T) {
	isolateLock(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	boom := errors.New("boom")

	_, err := Write(path, DefaultLockTimeout, func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestClassify(t *testing.T) {
	perm := &fs.PathError{Op: "open", Path: "x.xlsx", Err: fs.ErrPermission}

	err := Classify(perm, "x.xlsx")
	assert.True(t, errors.Is(err, apperrors.ErrFilePermission))
	assert.Contains(t, err.Error(), "file may be open in another application")
	assert.Equal(t, 423, apperrors.HTTPStatusCode(err))

	other := errors.New("disk full")
	assert.Equal(t, other, Classify(other, "x.xlsx"))
	assert.NoError(t, Classify(nil, "x.xlsx"))
}

func TestCreate_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	isolateLock(t)
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	_, err := Create(filepath.Join(dir, "out.xlsx"), DefaultLockTimeout)
	assert.True(t, errors.Is(err, apperrors.ErrFilePermission))
}
