//go:build windows

package locking

import "errors"

// Lock attempts to acquire the file lock.
//
// TODO: Implement using LockFileEx. gosyncd currently targets POSIX
// systems (it relies on inotify via fsnotify and on advisory fcntl
// locking); Windows support is tracked but not yet implemented.
func (l *Locker) Lock(block bool) error {
	return errors.New("file locking not implemented on this platform")
}

// Unlock releases the file lock.
func (l *Locker) Unlock() error {
	return errors.New("file locking not implemented on this platform")
}
