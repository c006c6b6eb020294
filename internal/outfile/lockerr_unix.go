//go:build unix

package outfile

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isLockViolation reports errors raised when another process holds the file.
func isLockViolation(err error) bool {
	return errors.Is(err, unix.EBUSY) || errors.Is(err, unix.ETXTBSY) || errors.Is(err, unix.EAGAIN)
}
