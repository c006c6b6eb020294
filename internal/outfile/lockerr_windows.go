//go:build windows

package outfile

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isLockViolation reports the errors Windows returns while a spreadsheet is
// open in Excel.
func isLockViolation(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
