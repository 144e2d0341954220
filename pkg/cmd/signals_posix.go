//go:build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// TerminationSignals are the signals gosyncd considers requests to
// terminate gracefully.
var TerminationSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGTERM,
}
