//go:build !windows

package atomicio

import (
	"os"

	"golang.org/x/sys/unix"
)

// rename performs the final atomic publication step. On POSIX systems
// os.Rename is already atomic when source and destination share a
// filesystem, which is the expected case since the temporary file is
// created alongside its destination.
func rename(source, destination string) error {
	return os.Rename(source, destination)
}

// isCrossDeviceError checks whether an error returned by os.Rename is due
// to an attempted rename across devices, which can still occur if the
// destination directory turns out to be a different mount than expected.
func isCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	return linkErr.Err == unix.EXDEV
}
