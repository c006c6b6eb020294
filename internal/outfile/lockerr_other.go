//go:build !unix && !windows

package outfile

func isLockViolation(error) bool { return false }
