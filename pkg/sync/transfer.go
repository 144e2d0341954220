package sync

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/gosyncd/gosyncd/pkg/environment"
)

// TransferOptions configures how the external transfer tool is invoked.
type TransferOptions struct {
	// Tool is the transfer executable (e.g. "rsync").
	Tool string
	// Source and Destination are passed through to the tool verbatim;
	// Source should carry a trailing slash if its contents, rather than
	// the directory itself, should land at Destination.
	Source, Destination string
	// ExcludesPath is passed as --exclude-from when non-empty.
	ExcludesPath string
	// FilesFromPath is passed as --files-from when non-empty, selecting
	// a partial transfer; when empty, a full transfer is performed.
	FilesFromPath string
}

// fullSyncBaseArgs and partialSyncBaseArgs are the default option sets for
// full and partial transfers, respectively. Full transfers stay on one
// filesystem (-x); partial transfers do not, since the watcher already
// enforces the same restriction when building its changed-path list, and
// dropping -x here avoids rejecting a partial transfer whose destination
// happens to span a different mount at the rsync level.
var (
	fullSyncBaseArgs    = []string{"-a", "--delete", "-x"}
	partialSyncBaseArgs = []string{"-a"}
)

// BuildArgs constructs the argument list for one invocation of the
// transfer tool according to opts.
func BuildArgs(opts TransferOptions) []string {
	var args []string
	if opts.FilesFromPath != "" {
		args = append(args, partialSyncBaseArgs...)
		args = append(args, "--files-from", opts.FilesFromPath)
	} else {
		args = append(args, fullSyncBaseArgs...)
	}
	if opts.ExcludesPath != "" {
		args = append(args, "--exclude-from", opts.ExcludesPath)
	}
	args = append(args, opts.Source, opts.Destination)
	return args
}

// RunTransfer executes the transfer tool described by opts, directing its
// standard error to stderr (the sync set's captured-stderr scratch file).
func RunTransfer(opts TransferOptions, stderr io.Writer) error {
	cmd := exec.Command(opts.Tool, BuildArgs(opts)...)
	cmd.Env = environment.Default()
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("transfer tool failed: %w", err)
	}
	return nil
}
