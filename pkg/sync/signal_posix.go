//go:build !windows

package sync

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminationSignal is the signal used to ask a watcher child to exit.
var terminationSignal os.Signal = unix.SIGTERM
