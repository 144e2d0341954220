//go:build !windows

package filewatch

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// deviceID returns the device id of the file or directory at path,
// following symlinks (a plain stat, not an lstat). It is used to enforce
// the "never cross filesystem boundaries" rule when descending into
// subdirectories.
func deviceID(path string) (uint64, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return 0, errors.Wrap(err, "unable to stat path")
	}
	return uint64(stat.Dev), nil
}
