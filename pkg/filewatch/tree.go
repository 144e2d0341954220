package filewatch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gosyncd/gosyncd/pkg/logging"
)

// FileNode models one regular file beneath the watched root.
type FileNode struct {
	// absolutePath is the file's absolute path on disk.
	absolutePath string
	// relativePath is the file's path relative to the top directory.
	relativePath string
	// name is the file's leaf name.
	name string
	// parent is the owning directory. It is a lookup relation, not an
	// ownership relation: the file is kept alive by its entry in
	// parent.files, not by this pointer.
	parent *DirectoryNode
	// modTime and size are the (mtime, size) pair last used for change
	// detection.
	modTime time.Time
	size    int64
	// seenInRescan is cleared at the start of a rescan of the parent
	// directory and set when the rescan re-observes this file.
	seenInRescan bool
}

// AbsolutePath returns the file's absolute path.
func (f *FileNode) AbsolutePath() string { return f.absolutePath }

// RelativePath returns the file's path relative to the top directory.
func (f *FileNode) RelativePath() string { return f.relativePath }

// Name returns the file's leaf name.
func (f *FileNode) Name() string { return f.name }

// Parent returns the file's parent directory node.
func (f *FileNode) Parent() *DirectoryNode { return f.parent }

// DirectoryNode models one directory beneath (or at) the watched root.
type DirectoryNode struct {
	// absolutePath is the directory's absolute path on disk.
	absolutePath string
	// relativePath is the directory's path relative to the top
	// directory; empty for the root.
	relativePath string
	// name is the directory's leaf name; empty for the root.
	name string
	// parent is nil at the root.
	parent *DirectoryNode
	// top is the owning top directory.
	top *TopDirectory
	// depth is 0 at the root.
	depth int
	// watched indicates whether a kernel watch is currently installed
	// for this directory.
	watched bool
	// watchFailed records that the last watch-install attempt for this
	// directory failed, satisfying the invariant that every node with
	// depth <= max depth has either a watch or a recorded failure.
	watchFailed bool
	// device is the device id observed on the last successful stat of
	// this directory.
	device uint64
	// files and directories are this node's children, each owned
	// exclusively by this node.
	files       []*FileNode
	directories []*DirectoryNode
	// filesUnsorted and directoriesUnsorted mark the corresponding slice
	// as needing a name-sort before the next name lookup: inserts
	// dominate during bootstrap, lookups dominate during steady state.
	filesUnsorted       bool
	directoriesUnsorted bool
	// seenInRescan is cleared at the start of a rescan of the parent and
	// set when the rescan re-observes this directory.
	seenInRescan bool
}

// AbsolutePath returns the directory's absolute path.
func (d *DirectoryNode) AbsolutePath() string { return d.absolutePath }

// RelativePath returns the directory's path relative to the top
// directory ("" for the root).
func (d *DirectoryNode) RelativePath() string { return d.relativePath }

// Name returns the directory's leaf name ("" for the root).
func (d *DirectoryNode) Name() string { return d.name }

// Parent returns the directory's parent, or nil at the root.
func (d *DirectoryNode) Parent() *DirectoryNode { return d.parent }

// Depth returns the directory's depth (0 at the root).
func (d *DirectoryNode) Depth() int { return d.depth }

// Watched reports whether a kernel watch is currently installed.
func (d *DirectoryNode) Watched() bool { return d.watched }

// Device returns the device id last observed for this directory.
func (d *DirectoryNode) Device() uint64 { return d.device }

// findFile returns the existing file child with the given name, if any.
func (d *DirectoryNode) findFile(name string) *FileNode {
	if d.filesUnsorted {
		sort.Slice(d.files, func(i, j int) bool { return d.files[i].name < d.files[j].name })
		d.filesUnsorted = false
	}
	i := sort.Search(len(d.files), func(i int) bool { return d.files[i].name >= name })
	if i < len(d.files) && d.files[i].name == name {
		return d.files[i]
	}
	return nil
}

// findDirectory returns the existing directory child with the given name,
// if any.
func (d *DirectoryNode) findDirectory(name string) *DirectoryNode {
	if d.directoriesUnsorted {
		sort.Slice(d.directories, func(i, j int) bool { return d.directories[i].name < d.directories[j].name })
		d.directoriesUnsorted = false
	}
	i := sort.Search(len(d.directories), func(i int) bool { return d.directories[i].name >= name })
	if i < len(d.directories) && d.directories[i].name == name {
		return d.directories[i]
	}
	return nil
}

// Files returns the directory's child files. The returned slice must not
// be retained across tree mutations.
func (d *DirectoryNode) Files() []*FileNode { return d.files }

// Directories returns the directory's child directories. The returned
// slice must not be retained across tree mutations.
func (d *DirectoryNode) Directories() []*DirectoryNode { return d.directories }

// TopDirectory is the one-per-watcher root of a Tree Model, along with
// the Watch Index, Change Queue, and Changed-Paths Accumulator that are
// scoped to it.
type TopDirectory struct {
	// RootPath is the canonicalized absolute root path.
	RootPath string
	// MaxDepth bounds how deep directories may be added; depth > MaxDepth
	// is refused.
	MaxDepth int
	// Filter is consulted by the Rescan Engine and Event Dispatcher
	// before any new file or directory is added to the model.
	Filter *Filter
	// Logger receives diagnostic output for watch failures and the like.
	Logger *logging.Logger
	// WatchIndex is the reverse map from watched directory to node.
	WatchIndex *WatchIndex
	// Queue is the deferred-work queue for this top directory.
	Queue *ChangeQueue
	// Accumulator holds the deduplicated, as-yet-undumped changed paths.
	Accumulator *Accumulator
	// Root is the root node of the Tree Model.
	Root *DirectoryNode
	// NotificationsEnabled indicates whether a kernel notification handle
	// is available; when false, the tree still tracks watchFailed status
	// but never attempts to install a watch, and the Watcher Loop must
	// rely entirely on periodic rescans.
	NotificationsEnabled bool
	// notifier is the kernel notification handle, or nil when
	// NotificationsEnabled is false.
	notifier *fsnotify.Watcher
}

// SetNotifier attaches the kernel notification handle that AddDir-created
// watches and RemoveDir-released watches are installed against. It must be
// called before the first rescan when NotificationsEnabled is true.
func (top *TopDirectory) SetNotifier(notifier *fsnotify.Watcher) {
	top.notifier = notifier
}

// DisableNotifications permanently turns off kernel notifications for top,
// degrading it to rescan-only operation. It is used when the Watcher Loop
// observes a read error on the notification handle (a Report-and-continue
// error per the error taxonomy).
func (top *TopDirectory) DisableNotifications() {
	top.NotificationsEnabled = false
	top.notifier = nil
}

// NewTopDirectory creates a new TopDirectory rooted at root. root must
// already be an absolute, canonicalized path (see filewatch.Canonicalize).
func NewTopDirectory(root string, maxDepth int, filter *Filter, notificationsEnabled bool, logger *logging.Logger) *TopDirectory {
	top := &TopDirectory{
		RootPath:             root,
		MaxDepth:             maxDepth,
		Filter:               filter,
		Logger:               logger,
		WatchIndex:           NewWatchIndex(),
		Queue:                NewChangeQueue(),
		Accumulator:          NewAccumulator(),
		NotificationsEnabled: notificationsEnabled,
	}
	top.Root = &DirectoryNode{
		absolutePath: root,
		relativePath: "",
		name:         "",
		parent:       nil,
		top:          top,
		depth:        0,
	}
	return top
}

// Canonicalize resolves path to an absolute, symlink-free form suitable
// for use as a top directory's root path.
func Canonicalize(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("unable to compute absolute path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", fmt.Errorf("unable to resolve symlinks: %w", err)
	}
	return resolved, nil
}

// relativePath computes dir's relative path suffix given the top
// directory's root path: the root's relative path is the empty string,
// and every descendant's relative path is the absolute path with the
// root prefix (and its trailing separator) stripped.
func (top *TopDirectory) relativePath(absolutePath string) string {
	if absolutePath == top.RootPath {
		return ""
	}
	return strings.TrimPrefix(absolutePath, top.RootPath+string(filepath.Separator))
}

// AddFile returns the existing file node for leaf under dir if one
// exists, otherwise it appends and returns a new one.
func (top *TopDirectory) AddFile(dir *DirectoryNode, leaf string) *FileNode {
	if existing := dir.findFile(leaf); existing != nil {
		return existing
	}

	absolutePath := filepath.Join(dir.absolutePath, leaf)
	node := &FileNode{
		absolutePath: absolutePath,
		relativePath: top.relativePath(absolutePath),
		name:         leaf,
		parent:       dir,
	}
	dir.files = append(dir.files, node)
	dir.filesUnsorted = true
	return node
}

// AddDir returns the existing directory node for leaf under parent if one
// exists, otherwise it appends and returns a new one. It refuses to add a
// child at depth greater than MaxDepth, returning nil.
func (top *TopDirectory) AddDir(parent *DirectoryNode, leaf string) *DirectoryNode {
	if parent.depth >= top.MaxDepth {
		return nil
	}
	if existing := parent.findDirectory(leaf); existing != nil {
		return existing
	}

	absolutePath := filepath.Join(parent.absolutePath, leaf)
	node := &DirectoryNode{
		absolutePath: absolutePath,
		relativePath: top.relativePath(absolutePath),
		name:         leaf,
		parent:       parent,
		top:          top,
		depth:        parent.depth + 1,
	}
	parent.directories = append(parent.directories, node)
	parent.directoriesUnsorted = true
	return node
}

// RemoveFile splices f from its parent's child list, cancels any pending
// Change Queue entry referencing it, and drops its paths from further
// consideration.
func (top *TopDirectory) RemoveFile(f *FileNode) {
	if f.parent != nil {
		f.parent.files = spliceFile(f.parent.files, f)
	}
	top.Queue.CancelFile(f)
}

// RemoveDir removes d's kernel watch (if any), drops it from the Watch
// Index, recursively removes all of its children (clearing each child's
// parent pointer first so the child's own splice is a no-op), splices d
// from its own parent, and cancels any pending Change Queue entry
// referencing it.
func (top *TopDirectory) RemoveDir(d *DirectoryNode) {
	if d.watched {
		top.unwatch(d)
	}
	top.WatchIndex.Remove(d)

	for _, child := range d.directories {
		child.parent = nil
		top.RemoveDir(child)
	}
	d.directories = nil

	for _, child := range d.files {
		child.parent = nil
		top.Queue.CancelFile(child)
	}
	d.files = nil

	if d.parent != nil {
		d.parent.directories = spliceDir(d.parent.directories, d)
	}
	top.Queue.CancelDir(d)
}

func spliceFile(files []*FileNode, target *FileNode) []*FileNode {
	for i, f := range files {
		if f == target {
			return append(files[:i], files[i+1:]...)
		}
	}
	return files
}

func spliceDir(dirs []*DirectoryNode, target *DirectoryNode) []*DirectoryNode {
	for i, d := range dirs {
		if d == target {
			return append(dirs[:i], dirs[i+1:]...)
		}
	}
	return dirs
}

// markDirChanged records d's relative path with a trailing separator in
// the accumulator ("/" for the root); markFileChanged records a file's
// relative path.
func (top *TopDirectory) markDirChanged(d *DirectoryNode) {
	top.Accumulator.Add(d.relativePath + "/")
}

func (top *TopDirectory) markFileChanged(f *FileNode) {
	top.Accumulator.Add(f.relativePath)
}

// watch installs a kernel watch for d if notifications are enabled and no
// watch is currently installed, recording success in the Watch Index or
// failure on the node itself (§4.2's invariant: every node with depth <=
// MaxDepth has either an installed watch or a recorded failed attempt).
func (top *TopDirectory) watch(d *DirectoryNode) {
	if !top.NotificationsEnabled || d.watched {
		return
	}
	if err := top.notifier.Add(d.absolutePath); err != nil {
		d.watchFailed = true
		top.Logger.Warnf("unable to watch %q: %v", d.absolutePath, err)
		return
	}
	d.watched = true
	d.watchFailed = false
	top.WatchIndex.Add(d)
}

// unwatch removes d's kernel watch, tolerating an "invalid argument" error
// from the kernel (the directory may already be gone).
func (top *TopDirectory) unwatch(d *DirectoryNode) {
	if !d.watched {
		return
	}
	if top.notifier != nil {
		if err := top.notifier.Remove(d.absolutePath); err != nil && !isInvalidArgument(err) {
			top.Logger.Warnf("unable to remove watch on %q: %v", d.absolutePath, err)
		}
	}
	d.watched = false
}
