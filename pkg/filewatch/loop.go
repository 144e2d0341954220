package filewatch

import (
	"context"
	"time"
)

// pollInterval is how long the loop waits for a kernel event before
// checking its deadlines when notifications are enabled.
const pollInterval = 100 * time.Millisecond

// disabledPollInterval is the sleep interval used in place of event
// readiness when notifications are unavailable (polling-only mode).
const disabledPollInterval = 1 * time.Second

// LoopConfig carries the scheduling intervals for a Watcher Loop.
type LoopConfig struct {
	// FullScanInterval is how often the root is queued for a full,
	// recursive rescan.
	FullScanInterval time.Duration
	// ChangeQueueInterval is how often the Change Queue is drained.
	ChangeQueueInterval time.Duration
	// ChangeQueueMaxDuration bounds how long a single drain pass may run,
	// so that one overloaded tick cannot starve event reads.
	ChangeQueueMaxDuration time.Duration
	// DumpInterval is how often accumulated changed paths are published.
	DumpInterval time.Duration
	// DumpDir is the output directory for published changed-paths files.
	DumpDir string
}

// Loop is the Watcher Loop: the single-threaded cooperative scheduler
// driving rescans, event dispatch, change-queue draining, and periodic
// emission of changed-path files for one Top Directory.
type Loop struct {
	top    *TopDirectory
	config LoopConfig

	nextFullScan time.Time
	nextQueueRun time.Time
	nextDump     time.Time
}

// NewLoop creates a Loop for top using config, seeding all three
// deadlines to fire on the loop's first iteration.
func NewLoop(top *TopDirectory, config LoopConfig) *Loop {
	now := time.Now()
	return &Loop{
		top:          top,
		config:       config,
		nextFullScan: now,
		nextQueueRun: now,
		nextDump:     now,
	}
}

// Run drives the loop until ctx is cancelled, returning nil on orderly
// cancellation. It performs the initial full scan synchronously before
// entering the steady-state loop, so that the first rescan deadline isn't
// racing event delivery against an empty tree.
func (l *Loop) Run(ctx context.Context) error {
	scan(l.top, l.top.Root, false)
	l.nextFullScan = time.Now().Add(l.config.FullScanInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		l.waitForEvent(ctx)

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()

		if !now.Before(l.nextFullScan) {
			l.top.Queue.QueueDir(l.top.Root, time.Time{})
			l.nextFullScan = now.Add(l.config.FullScanInterval)
		}

		if !now.Before(l.nextQueueRun) {
			l.top.Queue.Process(l.top, now.Add(l.config.ChangeQueueMaxDuration))
			l.nextQueueRun = now.Add(l.config.ChangeQueueInterval)
		}

		if !now.Before(l.nextDump) {
			if err := DumpWriter(l.top, l.config.DumpDir); err != nil {
				l.top.Logger.Warnf("unable to publish changed paths: %v", err)
			}
			l.nextDump = now.Add(l.config.DumpInterval)
		}
	}
}

// waitForEvent blocks for at most one poll interval, dispatching a single
// kernel event if one becomes available in that window. A read error on
// the notification handle is a Report-and-continue condition: the handle
// is closed and the loop degrades permanently to rescan-only operation.
func (l *Loop) waitForEvent(ctx context.Context) {
	if !l.top.NotificationsEnabled || l.top.notifier == nil {
		select {
		case <-ctx.Done():
		case <-time.After(disabledPollInterval):
		}
		return
	}

	timer := time.NewTimer(pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case event, ok := <-l.top.notifier.Events:
		if !ok {
			l.top.DisableNotifications()
			return
		}
		Dispatch(l.top, event)
	case err, ok := <-l.top.notifier.Errors:
		if ok {
			l.top.Logger.Warnf("notification handle error, degrading to polling: %v", err)
		}
		notifier := l.top.notifier
		l.top.DisableNotifications()
		_ = notifier.Close()
	case <-timer.C:
	}
}
