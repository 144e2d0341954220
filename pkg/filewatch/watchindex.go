package filewatch

// WatchIndex is the reverse map from a watched directory back to its
// node, implemented as a direct hash map rather than a lazy-sorted array:
// amortized O(1) lookup and insert dominate the bootstrap-heavy, then
// lookup-heavy access pattern. Since the underlying notification library
// (fsnotify) does not expose a numeric watch descriptor through its
// public API, the index is keyed on the watched directory's own absolute
// path, which is equally suitable as a watch identifier — one fsnotify
// Add per directory still yields exactly one index entry per directory,
// preserving the "at most one entry per watch id" invariant.
type WatchIndex struct {
	byPath map[string]*DirectoryNode
}

// NewWatchIndex creates an empty WatchIndex.
func NewWatchIndex() *WatchIndex {
	return &WatchIndex{byPath: make(map[string]*DirectoryNode)}
}

// Add records that d's absolute path is now watched.
func (idx *WatchIndex) Add(d *DirectoryNode) {
	idx.byPath[d.absolutePath] = d
}

// Remove drops any entry for d.
func (idx *WatchIndex) Remove(d *DirectoryNode) {
	delete(idx.byPath, d.absolutePath)
}

// Lookup resolves a watched path to its directory node.
func (idx *WatchIndex) Lookup(path string) (*DirectoryNode, bool) {
	d, ok := idx.byPath[path]
	return d, ok
}

// Len returns the number of currently-watched directories.
func (idx *WatchIndex) Len() int {
	return len(idx.byPath)
}
