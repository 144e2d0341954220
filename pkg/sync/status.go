package sync

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gosyncd/gosyncd/pkg/filesystem/atomicio"
	"github.com/gosyncd/gosyncd/pkg/logging"
)

const statusFilePermissions = 0o644

const statusTimeFormat = "2006-01-02 15:04:05"

// formatTime renders t in the status file's local-time format, or "-" for
// the zero value.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return statusNone
	}
	return t.Local().Format(statusTimeFormat)
}

// WriteStatus atomically publishes state to path as a sequence of
// "key : value" lines, one per Sync Set State attribute, with a trailing
// blank line. It is called before every state transition so that external
// observers always see the supervisor's current state.
func WriteStatus(path, section string, state *State, logger *logging.Logger) error {
	watcherPID := statusNone
	if state.WatcherPID != 0 {
		watcherPID = fmt.Sprintf("%d", state.WatcherPID)
	}

	lines := []string{
		fmt.Sprintf("section : %s", section),
		fmt.Sprintf("current action : %s", state.Action),
		fmt.Sprintf("sync process pid : %d", os.Getpid()),
		fmt.Sprintf("watcher process pid : %s", watcherPID),
		fmt.Sprintf("last full sync status : %s", orDash(state.LastFullStatus)),
		fmt.Sprintf("last partial sync status : %s", orDash(state.LastPartialStatus)),
		fmt.Sprintf("last full sync : %s", formatTime(state.LastFullSync)),
		fmt.Sprintf("next full sync : %s", formatTime(state.NextFullSync)),
		fmt.Sprintf("last partial sync : %s", formatTime(state.LastPartialSync)),
		fmt.Sprintf("next partial sync : %s", formatTime(state.NextPartialSync)),
		fmt.Sprintf("last full sync failure : %s", formatTime(state.LastFullFailure)),
		fmt.Sprintf("last partial sync failure : %s", formatTime(state.LastPartialFailure)),
		fmt.Sprintf("full sync failure count : %d", state.FullFailureCount),
		fmt.Sprintf("partial sync failure count : %d", state.PartialFailureCount),
		fmt.Sprintf("working directory : %s", state.WorkingDirectory),
	}

	content := strings.Join(lines, "\n") + "\n\n"
	if err := atomicio.WriteFile(path, []byte(content), statusFilePermissions, logger); err != nil {
		return fmt.Errorf("unable to publish status file: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return statusNone
	}
	return s
}
