package locking

import (
	"os"
	"testing"
)

// TestLockerFailOnDirectory tests that a locker creation fails for a
// directory.
func TestLockerFailOnDirectory(t *testing.T) {
	if _, err := NewLocker(t.TempDir(), 0600); err == nil {
		t.Fatal("creating a locker on a directory path succeeded")
	}
}

// TestLockerCycle tests the lifecycle of a Locker.
func TestLockerCycle(t *testing.T) {
	lockfile, err := os.CreateTemp(t.TempDir(), "gosyncd_lock")
	if err != nil {
		t.Fatal("unable to create temporary lock file:", err)
	}
	path := lockfile.Name()
	if err := lockfile.Close(); err != nil {
		t.Fatal("unable to close temporary lock file:", err)
	}

	locker, err := NewLocker(path, 0600)
	if err != nil {
		t.Fatal("unable to create locker:", err)
	}

	if err := locker.Lock(true); err != nil {
		t.Fatal("unable to acquire lock:", err)
	}
	if err := locker.Unlock(); err != nil {
		t.Fatal("unable to release lock:", err)
	}
	if err := locker.Close(); err != nil {
		t.Fatal("unable to close locker:", err)
	}
}

// TestLockerNonBlockingSecondHandle tests that a second, independent file
// descriptor opened on the same lock file can acquire the lock once the
// first handle releases it.
func TestLockerNonBlockingSecondHandle(t *testing.T) {
	path := t.TempDir() + "/lock"
	first, err := NewLocker(path, 0600)
	if err != nil {
		t.Fatal("unable to create first locker:", err)
	}
	defer first.Close()

	if err := first.Lock(false); err != nil {
		t.Fatal("unable to acquire first lock:", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatal("unable to release first lock:", err)
	}

	second, err := NewLocker(path, 0600)
	if err != nil {
		t.Fatal("unable to create second locker:", err)
	}
	defer second.Close()

	if err := second.Lock(false); err != nil {
		t.Fatal("unable to acquire second lock after release:", err)
	}
	if err := second.Unlock(); err != nil {
		t.Fatal("unable to release second lock:", err)
	}
}
