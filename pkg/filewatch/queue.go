package filewatch

import "time"

// fileCheckDeferral is the default deferral window applied to a queued
// file check. It coalesces bursts of writes to a single file into one
// eventual stat/compare, rather than reacting to every individual write
// event.
const fileCheckDeferral = 2 * time.Second

// queueEntry is a Change Queue Entry: exactly one of file or dir is
// non-nil for a live entry; both nil marks a tombstone (its referent was
// removed from the tree before the entry was processed).
type queueEntry struct {
	when time.Time
	file *FileNode
	dir  *DirectoryNode
}

// ChangeQueue is the deferred-work queue of (file or directory,
// earliest-process time) items, deduplicated by referent.
type ChangeQueue struct {
	entries     []*queueEntry
	queuedFiles map[*FileNode]*queueEntry
	queuedDirs  map[*DirectoryNode]*queueEntry
}

// NewChangeQueue creates an empty ChangeQueue.
func NewChangeQueue() *ChangeQueue {
	return &ChangeQueue{
		queuedFiles: make(map[*FileNode]*queueEntry),
		queuedDirs:  make(map[*DirectoryNode]*queueEntry),
	}
}

// QueueFile schedules f for a change check at "when" (defaulting to now +
// the file check deferral). It is a no-op if f is already queued.
func (q *ChangeQueue) QueueFile(f *FileNode, when time.Time) {
	if when.IsZero() {
		when = time.Now().Add(fileCheckDeferral)
	}
	if _, ok := q.queuedFiles[f]; ok {
		return
	}
	entry := &queueEntry{when: when, file: f}
	q.entries = append(q.entries, entry)
	q.queuedFiles[f] = entry
}

// QueueDir schedules d for a rescan at "when" (defaulting to now). It is a
// no-op if d is already queued.
func (q *ChangeQueue) QueueDir(d *DirectoryNode, when time.Time) {
	if when.IsZero() {
		when = time.Now()
	}
	if _, ok := q.queuedDirs[d]; ok {
		return
	}
	entry := &queueEntry{when: when, dir: d}
	q.entries = append(q.entries, entry)
	q.queuedDirs[d] = entry
}

// CancelFile removes any pending entry for f, turning it into a tombstone
// if it hasn't been processed yet.
func (q *ChangeQueue) CancelFile(f *FileNode) {
	if entry, ok := q.queuedFiles[f]; ok {
		entry.file = nil
		delete(q.queuedFiles, f)
	}
}

// CancelDir removes any pending entry for d, turning it into a tombstone
// if it hasn't been processed yet.
func (q *ChangeQueue) CancelDir(d *DirectoryNode) {
	if entry, ok := q.queuedDirs[d]; ok {
		entry.dir = nil
		delete(q.queuedDirs, d)
	}
}

// Len returns the number of non-tombstone entries currently queued.
func (q *ChangeQueue) Len() int {
	return len(q.queuedFiles) + len(q.queuedDirs)
}

// Process performs a single pass over the queue: every non-tombstone
// entry whose time has come (when <= now) is processed and dropped, so
// long as the deadline has not yet passed; entries not yet due, or
// deferred because the deadline has passed, are retained in order;
// tombstones are dropped unconditionally.
func (q *ChangeQueue) Process(top *TopDirectory, deadline time.Time) {
	now := time.Now()
	retained := q.entries[:0]

	for _, entry := range q.entries {
		if entry.file == nil && entry.dir == nil {
			continue
		}
		if entry.when.After(now) || !time.Now().Before(deadline) {
			retained = append(retained, entry)
			continue
		}

		if entry.file != nil {
			processFileEntry(top, entry.file)
			delete(q.queuedFiles, entry.file)
		} else {
			processDirEntry(top, entry.dir)
			delete(q.queuedDirs, entry.dir)
		}
	}

	q.entries = retained
}

// processFileEntry implements the Change Queue's action for a file entry:
// check for a changed (mtime, size) pair, handling disappearance as an
// implicit delete.
func processFileEntry(top *TopDirectory, f *FileNode) {
	checkFileChanged(top, f)
}

// processDirEntry implements the Change Queue's action for a directory
// entry: a recursive rescan.
func processDirEntry(top *TopDirectory, d *DirectoryNode) {
	scan(top, d, false)
}
