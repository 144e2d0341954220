package sync

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/gosyncd/gosyncd/pkg/environment"
	"github.com/gosyncd/gosyncd/pkg/logging"
)

// WatcherChild tracks one spawned "watch" subprocess. Go cannot safely
// fork a multi-threaded runtime, so in place of the fork-and-run-the-
// watcher-in-the-child model, the supervisor re-executes itself with a
// "watch" subcommand.
type WatcherChild struct {
	cmd  *exec.Cmd
	done chan error
}

// SpawnWatcher starts selfExecutable as a "watch" child rooted at root,
// publishing changed-paths files to outputDir, and returns immediately; a
// background goroutine observes its exit.
func SpawnWatcher(selfExecutable, root, outputDir string, maxDepth int, excludes []string, logger *logging.Logger) (*WatcherChild, error) {
	args := []string{
		"watch",
		"--root", root,
		"--output", outputDir,
		"--max-depth", strconv.Itoa(maxDepth),
	}
	for _, pattern := range excludes {
		args = append(args, "--exclude", pattern)
	}

	cmd := exec.Command(selfExecutable, args...)
	cmd.Env = environment.Default()
	cmd.Stderr = logger.Writer()
	// Stop waiting for the stderr pipe once the child has exited, even if
	// a process it started still holds the pipe open.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("unable to start watcher: %w", err)
	}

	child := &WatcherChild{cmd: cmd, done: make(chan error, 1)}
	go func() {
		child.done <- cmd.Wait()
	}()

	return child, nil
}

// PID returns the watcher child's process id.
func (w *WatcherChild) PID() int {
	return w.cmd.Process.Pid
}

// Terminate requests that the watcher exit, without waiting for it; reap
// happens via Reap once its exit is observed.
func (w *WatcherChild) Terminate() error {
	return w.cmd.Process.Signal(terminationSignal)
}

// Reap reports whether the watcher has exited, without blocking. The
// returned error is the watcher's exit error, if any.
func (w *WatcherChild) Reap() (exited bool, err error) {
	select {
	case err = <-w.done:
		return true, err
	default:
		return false, nil
	}
}
