package sync

import (
	"sync"

	"github.com/gosyncd/gosyncd/pkg/filesystem/locking"
)

const lockFilePermissions = 0o644

// pathMutexes holds one mutex per lock path. fcntl record locks belong to
// the process, so a second descriptor opened by the same process acquires
// the lock at once; these mutexes serialize callers within one process.
var pathMutexes sync.Map

// withLock opens path (creating it if necessary), blocks until the
// advisory lock is acquired, runs fn, and unlocks/closes afterward
// regardless of fn's outcome. If path is empty, no locking is performed
// (an unconfigured sync_lock serializes nothing).
func withLock(path string, fn func() error) error {
	if path == "" {
		return fn()
	}

	mutex, _ := pathMutexes.LoadOrStore(path, &sync.Mutex{})
	mutex.(*sync.Mutex).Lock()
	defer mutex.(*sync.Mutex).Unlock()

	locker, err := locking.NewLocker(path, lockFilePermissions)
	if err != nil {
		return err
	}
	defer locker.Close()

	if err := locker.Lock(true); err != nil {
		return err
	}
	defer locker.Unlock()

	return fn()
}
