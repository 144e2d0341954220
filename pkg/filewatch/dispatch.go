package filewatch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Dispatch implements the Event Dispatcher: it resolves one kernel
// notification event to a Tree Model node and applies the corresponding
// Create/Update/Delete action. It is called once per event drained from
// the notifier by the Watcher Loop.
func Dispatch(top *TopDirectory, event fsnotify.Event) {
	if node, ok := top.WatchIndex.Lookup(event.Name); ok {
		// An event whose Name is a watched directory's own path is taken
		// to be about that directory itself: self-delete and self-move
		// arrive that way, and so does a remove or rename of the
		// directory reported by its parent's watch. Only deletion is
		// acted on; any other event for such a path is dropped.
		if isDeleteEvent(event) {
			if node.parent != nil {
				top.markDirChanged(node.parent)
			}
			top.RemoveDir(node)
		}
		return
	}

	parentPath := filepath.Dir(event.Name)
	parent, ok := top.WatchIndex.Lookup(parentPath)
	if !ok {
		// Stale event for a watch that is already gone; the
		// corresponding RemoveDir will have cancelled any further
		// interest in this subtree.
		return
	}

	leaf := filepath.Base(event.Name)
	if !top.Filter.Allowed(leaf) {
		return
	}

	if isDeleteEvent(event) {
		dispatchDelete(top, parent, leaf)
		return
	}
	dispatchCreateOrUpdate(top, parent, leaf)
}

// isDeleteEvent classifies a kernel event as belonging to the
// delete/moved-from group rather than the
// create/modify/attribute-change/moved-to group.
func isDeleteEvent(event fsnotify.Event) bool {
	return event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func dispatchDelete(top *TopDirectory, parent *DirectoryNode, leaf string) {
	if f := parent.findFile(leaf); f != nil {
		top.markDirChanged(parent)
		top.RemoveFile(f)
		return
	}
	if d := parent.findDirectory(leaf); d != nil {
		top.RemoveDir(d)
		top.markDirChanged(parent)
	}
}

func dispatchCreateOrUpdate(top *TopDirectory, parent *DirectoryNode, leaf string) {
	childPath := filepath.Join(parent.absolutePath, leaf)
	info, err := os.Lstat(childPath)
	if err != nil {
		// The path is already gone again by the time we got to it; the
		// matching delete event (if any) will clean up the model, or
		// the next rescan will.
		return
	}

	switch {
	case info.Mode().IsRegular():
		if existing := parent.findFile(leaf); existing != nil {
			top.Queue.QueueFile(existing, time.Time{})
			return
		}
		node := top.AddFile(parent, leaf)
		top.Queue.QueueFile(node, time.Time{})
	case info.IsDir():
		if existing := parent.findDirectory(leaf); existing != nil {
			top.Queue.QueueDir(existing, time.Time{})
			return
		}
		node := top.AddDir(parent, leaf)
		if node == nil {
			return
		}
		top.Queue.QueueDir(node, time.Time{})
		top.markDirChanged(node)
	default:
		// Not a regular file or directory: left untracked.
	}
}
