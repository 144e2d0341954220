// Package locking provides advisory file locking, used to serialize
// competing full and partial sync-set transfers that share a sync_lock
// path (and, across supervisors, any sets that happen to share a lock
// path).
package locking

import (
	"os"

	"github.com/pkg/errors"
)

// Locker provides file locking facilities.
type Locker struct {
	// file is the underlying file object to be locked.
	file *os.File
}

// NewLocker attempts to create a lock with the file at the specified path,
// creating the file if necessary. The lock is returned in an unlocked
// state.
func NewLocker(path string, permissions os.FileMode) (*Locker, error) {
	mode := os.O_RDWR | os.O_CREATE | os.O_APPEND
	file, err := os.OpenFile(path, mode, permissions)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open lock file")
	}
	return &Locker{file: file}, nil
}

// Close closes the underlying lock file. Any held lock is implicitly
// released by the kernel when the descriptor is closed.
func (l *Locker) Close() error {
	return l.file.Close()
}
