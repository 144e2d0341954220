package filewatch

import (
	"errors"

	"github.com/fsnotify/fsnotify"
)

// isInvalidArgument reports whether err is the kernel's way of saying a
// watch no longer exists (the directory it covered is already gone), which
// is an Ignored error per the error taxonomy, not a Report-and-continue
// one.
func isInvalidArgument(err error) bool {
	return errors.Is(err, fsnotify.ErrNonExistentWatch)
}
