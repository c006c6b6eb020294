//go:build !windows

package outfile

import (
	"errors"
	"os"
)

// removePartial deletes a half-written output file if it is still there.
func removePartial(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
