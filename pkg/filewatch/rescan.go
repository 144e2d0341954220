package filewatch

import (
	"os"
	"path/filepath"
)

// scan implements the Rescan Engine: a one-level (or, unless noRecurse,
// fully recursive) directory scan that reconciles the listing with the
// Tree Model, updates watches, and triggers deeper work. It returns false
// if dir had to be removed (too deep, or no longer stat-able).
func scan(top *TopDirectory, dir *DirectoryNode, noRecurse bool) bool {
	if dir.depth > top.MaxDepth {
		top.RemoveDir(dir)
		return false
	}

	device, err := deviceID(dir.absolutePath)
	if err != nil {
		top.RemoveDir(dir)
		return false
	}
	dir.device = device

	entries, err := os.ReadDir(dir.absolutePath)
	if err != nil {
		top.RemoveDir(dir)
		return false
	}

	existingFiles := append([]*FileNode(nil), dir.files...)
	existingDirs := append([]*DirectoryNode(nil), dir.directories...)
	for _, f := range existingFiles {
		f.seenInRescan = false
	}
	for _, d := range existingDirs {
		d.seenInRescan = false
	}

	for _, entry := range entries {
		name := entry.Name()
		if !top.Filter.Allowed(name) {
			continue
		}

		childPath := filepath.Join(dir.absolutePath, name)
		childInfo, err := os.Lstat(childPath)
		if err != nil {
			continue
		}

		switch {
		case childInfo.Mode().IsRegular():
			f := top.AddFile(dir, name)
			f.seenInRescan = true
		case childInfo.IsDir():
			childDevice, err := deviceID(childPath)
			if err != nil || childDevice != dir.device {
				continue
			}
			d := top.AddDir(dir, name)
			if d != nil {
				d.seenInRescan = true
			}
		default:
			// Not a regular file or directory (symlink, socket, device,
			// etc.): the model only tracks regular files and directories.
		}
	}

	for _, child := range existingDirs {
		if !child.seenInRescan {
			top.RemoveDir(child)
		}
	}
	for _, child := range existingFiles {
		if !child.seenInRescan {
			top.markDirChanged(dir)
			top.RemoveFile(child)
		}
	}

	for _, child := range dir.directories {
		if !noRecurse {
			scan(top, child, false)
		}
	}

	for _, f := range append([]*FileNode(nil), dir.files...) {
		checkFileChanged(top, f)
	}

	if !dir.watched && top.NotificationsEnabled {
		top.watch(dir)
	}

	return true
}

// checkFileChanged implements the "check_changed" action shared by the
// Rescan Engine's final pass and the Change Queue's file-entry action: it
// stats f and either marks it changed (updating its recorded attributes)
// or, on disappearance, treats that as an implicit delete.
func checkFileChanged(top *TopDirectory, f *FileNode) {
	info, err := os.Stat(f.absolutePath)
	if err != nil || !info.Mode().IsRegular() {
		top.markDirChanged(f.parent)
		top.RemoveFile(f)
		return
	}

	modTime := info.ModTime()
	size := info.Size()
	if !modTime.Equal(f.modTime) || size != f.size {
		f.modTime = modTime
		f.size = size
		top.markFileChanged(f)
	}
}
