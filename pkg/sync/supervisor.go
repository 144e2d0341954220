package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosyncd/gosyncd/pkg/collate"
	"github.com/gosyncd/gosyncd/pkg/filesystem/atomicio"
	"github.com/gosyncd/gosyncd/pkg/logging"
)

// tickInterval is the supervisor's poll/sleep period.
const tickInterval = 100 * time.Millisecond

// watcherRetryInterval is how long the supervisor waits before retrying
// source validation after a failed attempt to start the watcher child.
const watcherRetryInterval = 5 * time.Second

// maxWorkingDirectoryRemovalDepth bounds the recursive cleanup of a sync
// set's working directory at exit.
const maxWorkingDirectoryRemovalDepth = 10

// excludesFilePermissions is the mode used for the supervisor's scratch
// excludes file.
const excludesFilePermissions = 0o644

// Config describes one configured sync set for the supervisor.
type Config struct {
	// Section names this set for the status file and log sublogger.
	Section string
	// Source and Destination are passed to the transfer tool.
	Source, Destination string
	// SelfExecutable is re-executed with a "watch" subcommand to run the
	// change-detection watcher as a child process.
	SelfExecutable string
	// WorkingDirectory holds this set's scratch files (excludes,
	// transfer list, change-queue directory).
	WorkingDirectory string
	// MaxDepth bounds the watcher's tree depth.
	MaxDepth int
	// Excludes is the shell-glob exclusion list passed to both the
	// watcher's Path Filter and the transfer tool's --exclude-from.
	Excludes []string
	// Tool is the transfer executable (e.g. "rsync").
	Tool string
	// SourceValidate and DestinationValidate are shell commands run
	// before any transfer; a non-zero exit fails validation.
	SourceValidate, DestinationValidate string
	// FullInterval/FullRetry and PartialInterval/PartialRetry schedule
	// full and partial syncs; an interval of zero disables that sync
	// kind entirely (and, for partial, disables the watcher child too).
	FullInterval, FullRetry       time.Duration
	PartialInterval, PartialRetry time.Duration
	// SyncLockPath is the advisory lock serializing transfers; empty
	// disables locking.
	SyncLockPath string
	// StatusPath is where the status file is published.
	StatusPath string
	// FullMarkerPath and PartialMarkerPath record the mtime of the last
	// successful sync of each kind.
	FullMarkerPath, PartialMarkerPath string
}

// Supervisor runs one Config's sync set: starting and reaping its watcher
// child, running full and partial transfers on their own schedules, and
// keeping its status file current.
type Supervisor struct {
	config Config
	logger *logging.Logger

	state              *State
	watcher            *WatcherChild
	nextWatcherAttempt time.Time
	exitRequested      bool

	excludesPath     string
	changeQueueDir   string
	transferListPath string
	stderrPath       string
}

// openStderr (re)creates the sync set's captured-stderr scratch file,
// truncating any previous contents, for one validation or transfer
// invocation to write into.
func (s *Supervisor) openStderr() (*os.File, error) {
	return os.OpenFile(s.stderrPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

// runWithCapturedStderr opens the stderr scratch file, runs fn with it,
// and closes it; on failure it also logs the scratch file's location so
// an operator knows where to look.
func (s *Supervisor) runWithCapturedStderr(fn func(stderr *os.File) error) error {
	file, err := s.openStderr()
	if err != nil {
		return fmt.Errorf("unable to open captured-stderr file: %w", err)
	}
	defer file.Close()

	err = fn(file)
	if err != nil {
		s.logger.Warnf("see %s for captured output", s.stderrPath)
	}
	return err
}

// NewSupervisor creates a Supervisor for config, logging through logger.
func NewSupervisor(config Config, logger *logging.Logger) *Supervisor {
	return &Supervisor{
		config:           config,
		logger:           logger,
		excludesPath:     filepath.Join(config.WorkingDirectory, "excludes"),
		changeQueueDir:   filepath.Join(config.WorkingDirectory, "changes"),
		transferListPath: filepath.Join(config.WorkingDirectory, "transfer-list"),
		stderrPath:       filepath.Join(config.WorkingDirectory, "stderr"),
	}
}

// Run drives the supervisor until ctx is cancelled or the working
// directory disappears out from under it, whichever comes first.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.prepare(); err != nil {
		return err
	}
	defer s.cleanup()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		s.tick()

		if s.exitRequested {
			return nil
		}
	}
}

func (s *Supervisor) prepare() error {
	if err := os.MkdirAll(s.config.WorkingDirectory, 0o755); err != nil {
		return fmt.Errorf("unable to create working directory: %w", err)
	}
	if err := os.MkdirAll(s.changeQueueDir, 0o755); err != nil {
		return fmt.Errorf("unable to create change-queue directory: %w", err)
	}

	excludesContent := strings.Join(s.config.Excludes, "\n")
	if excludesContent != "" {
		excludesContent += "\n"
	}
	if err := atomicio.WriteFile(s.excludesPath, []byte(excludesContent), excludesFilePermissions, s.logger); err != nil {
		return fmt.Errorf("unable to write excludes file: %w", err)
	}

	lastFull, err := ReadMarker(s.config.FullMarkerPath)
	if err != nil {
		return fmt.Errorf("unable to read full-sync marker: %w", err)
	}
	lastPartial, err := ReadMarker(s.config.PartialMarkerPath)
	if err != nil {
		return fmt.Errorf("unable to read partial-sync marker: %w", err)
	}

	s.state = NewState(s.config.WorkingDirectory, s.excludesPath, s.stderrPath)
	s.state.LastFullSync = lastFull
	s.state.LastPartialSync = lastPartial

	now := time.Now()
	s.state.NextFullSync = nextDeadline(lastFull, now, s.config.FullInterval)
	s.state.NextPartialSync = nextDeadline(lastPartial, now, s.config.PartialInterval)

	return s.writeStatus()
}

func nextDeadline(last, now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return time.Time{}
	}
	if last.IsZero() {
		return now
	}
	return last.Add(interval)
}

func (s *Supervisor) writeStatus() error {
	return WriteStatus(s.config.StatusPath, s.config.Section, s.state, s.logger)
}

func (s *Supervisor) tick() {
	now := time.Now()

	s.maintainWatcher(now)
	s.reapWatcher()

	if s.config.FullInterval > 0 && !now.Before(s.state.NextFullSync) {
		s.runFullSync()
	}
	if s.config.PartialInterval > 0 && s.watcher != nil && !time.Now().Before(s.state.NextPartialSync) {
		s.runPartialSync()
	}

	if _, err := os.Stat(s.config.WorkingDirectory); err != nil {
		s.logger.Warnf("working directory gone, exiting: %v", err)
		s.exitRequested = true
	}
}

func (s *Supervisor) maintainWatcher(now time.Time) {
	if s.config.PartialInterval <= 0 || s.watcher != nil {
		return
	}
	if now.Before(s.nextWatcherAttempt) {
		return
	}

	s.state.Action = ActionValidateSource
	s.writeStatus()
	err := s.runWithCapturedStderr(func(stderr *os.File) error {
		return RunValidation(s.config.SourceValidate, stderr)
	})
	if err != nil {
		s.logger.Warnf("source validation failed, retrying watcher start: %v", err)
		s.nextWatcherAttempt = now.Add(watcherRetryInterval)
		s.state.Action = ActionWaiting
		s.writeStatus()
		return
	}

	watcher, err := SpawnWatcher(s.config.SelfExecutable, s.config.Source, s.changeQueueDir, s.config.MaxDepth, s.config.Excludes, s.logger)
	if err != nil {
		s.logger.Warnf("unable to start watcher: %v", err)
		s.nextWatcherAttempt = now.Add(watcherRetryInterval)
		s.state.Action = ActionWaiting
		s.writeStatus()
		return
	}

	s.watcher = watcher
	s.state.WatcherPID = watcher.PID()
	s.state.Action = ActionWaiting
	s.writeStatus()
}

func (s *Supervisor) reapWatcher() {
	if s.watcher == nil {
		return
	}
	exited, err := s.watcher.Reap()
	if !exited {
		return
	}
	if err != nil {
		s.logger.Warnf("watcher exited: %v", err)
	} else {
		s.logger.Printf("watcher exited")
	}
	s.watcher = nil
	s.state.WatcherPID = 0
	s.writeStatus()
}

func (s *Supervisor) runFullSync() {
	now := time.Now()

	if err := s.validateBothSides(); err != nil {
		s.state.recordFullFailure(now, s.config.FullRetry)
		s.state.Action = ActionWaiting
		s.writeStatus()
		return
	}

	s.state.Action = ActionSyncFullAwaitingLock
	s.writeStatus()

	err := withLock(s.config.SyncLockPath, func() error {
		s.state.Action = ActionSyncFull
		s.writeStatus()
		return s.runWithCapturedStderr(func(stderr *os.File) error {
			return RunTransfer(TransferOptions{
				Tool:         s.config.Tool,
				Source:       s.config.Source + string(filepath.Separator),
				Destination:  s.config.Destination,
				ExcludesPath: s.excludesPath,
			}, stderr)
		})
	})

	now = time.Now()
	if err != nil {
		s.logger.Warnf("full sync failed: %v", err)
		s.state.recordFullFailure(now, s.config.FullRetry)
	} else if err := WriteMarker(s.config.FullMarkerPath, now); err != nil {
		s.logger.Warnf("unable to update full-sync marker: %v", err)
		s.state.recordFullFailure(now, s.config.FullRetry)
	} else {
		s.state.recordFullSuccess(now, s.config.FullInterval)
	}

	s.state.Action = ActionWaiting
	s.writeStatus()
}

func (s *Supervisor) runPartialSync() {
	now := time.Now()

	if err := s.validateBothSides(); err != nil {
		s.state.recordPartialFailure(now, s.config.PartialRetry)
		s.state.Action = ActionWaiting
		s.writeStatus()
		return
	}

	count, err := collate.Collate(s.config.Source, s.changeQueueDir, s.transferListPath, s.logger)
	if err != nil {
		s.logger.Warnf("unable to collate changed paths: %v", err)
		s.state.recordPartialFailure(now, s.config.PartialRetry)
		s.state.Action = ActionWaiting
		s.writeStatus()
		return
	}
	if count == 0 {
		s.state.NextPartialSync = now.Add(s.config.PartialInterval)
		return
	}

	s.state.Action = ActionSyncPartialAwaitingLock
	s.writeStatus()

	err = withLock(s.config.SyncLockPath, func() error {
		s.state.Action = ActionSyncPartial
		s.writeStatus()
		return s.runWithCapturedStderr(func(stderr *os.File) error {
			return RunTransfer(TransferOptions{
				Tool:          s.config.Tool,
				Source:        s.config.Source + string(filepath.Separator),
				Destination:   s.config.Destination,
				FilesFromPath: s.transferListPath,
			}, stderr)
		})
	})

	if removeErr := os.Remove(s.transferListPath); removeErr != nil && !os.IsNotExist(removeErr) {
		s.logger.Warnf("unable to remove transfer list: %v", removeErr)
	}

	now = time.Now()
	if err != nil {
		s.logger.Warnf("partial sync failed: %v", err)
		s.state.recordPartialFailure(now, s.config.PartialRetry)
	} else if err := WriteMarker(s.config.PartialMarkerPath, now); err != nil {
		s.logger.Warnf("unable to update partial-sync marker: %v", err)
		s.state.recordPartialFailure(now, s.config.PartialRetry)
	} else {
		s.state.recordPartialSuccess(now, s.config.PartialInterval)
	}

	s.state.Action = ActionWaiting
	s.writeStatus()
}

func (s *Supervisor) validateBothSides() error {
	s.state.Action = ActionValidateSource
	s.writeStatus()
	err := s.runWithCapturedStderr(func(stderr *os.File) error {
		return RunValidation(s.config.SourceValidate, stderr)
	})
	if err != nil {
		return fmt.Errorf("source validation failed: %w", err)
	}

	s.state.Action = ActionValidateDestination
	s.writeStatus()
	err = s.runWithCapturedStderr(func(stderr *os.File) error {
		return RunValidation(s.config.DestinationValidate, stderr)
	})
	if err != nil {
		return fmt.Errorf("destination validation failed: %w", err)
	}

	return nil
}

func (s *Supervisor) cleanup() {
	if s.watcher != nil {
		if err := s.watcher.Terminate(); err != nil {
			s.logger.Warnf("unable to terminate watcher: %v", err)
		}
	}

	if err := removeTree(s.config.WorkingDirectory, maxWorkingDirectoryRemovalDepth); err != nil {
		s.logger.Warnf("unable to remove working directory: %v", err)
	}

	if err := os.Remove(s.config.StatusPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warnf("unable to remove status file: %v", err)
	}
}

// removeTree recursively removes path, refusing to descend more than
// maxDepth levels (a defensive bound against runaway or cyclic trees).
func removeTree(path string, maxDepth int) error {
	if maxDepth <= 0 {
		return fmt.Errorf("refusing to remove %q: maximum recursion depth exceeded", path)
	}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return os.Remove(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := removeTree(filepath.Join(path, entry.Name()), maxDepth-1); err != nil {
			return err
		}
	}
	return os.Remove(path)
}
