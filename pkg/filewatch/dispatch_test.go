package filewatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestDispatchFileCreate(t *testing.T) {
	root := t.TempDir()
	canon, err := Canonicalize(root)
	if err != nil {
		t.Fatal(err)
	}
	top := NewTopDirectory(canon, 10, NewFilter(nil), false, nil)
	top.WatchIndex.Add(top.Root)

	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	Dispatch(top, fsnotify.Event{Name: path, Op: fsnotify.Create})

	if len(top.Root.Files()) != 1 || top.Root.Files()[0].Name() != "a.txt" {
		t.Fatalf("expected a.txt to be added, got %v", top.Root.Files())
	}
	if top.Queue.Len() != 1 {
		t.Errorf("expected the new file to be queued for a change check, got %d", top.Queue.Len())
	}
}

func TestDispatchFileDelete(t *testing.T) {
	top := newTestTop(t)
	top.WatchIndex.Add(top.Root)
	file := top.AddFile(top.Root, "a.txt")

	Dispatch(top, fsnotify.Event{Name: filepath.Join(top.RootPath, "a.txt"), Op: fsnotify.Remove})

	if len(top.Root.Files()) != 0 {
		t.Error("expected a.txt to be removed")
	}
	if top.Accumulator.Len() != 1 || top.Accumulator.Paths()[0] != "/" {
		t.Errorf("expected the root to be marked changed, got %v", top.Accumulator.Paths())
	}
	_ = file
}

func TestDispatchDirCreateMarksItsOwnPath(t *testing.T) {
	root := t.TempDir()
	canon, err := Canonicalize(root)
	if err != nil {
		t.Fatal(err)
	}
	top := NewTopDirectory(canon, 10, NewFilter(nil), false, nil)
	top.WatchIndex.Add(top.Root)

	path := filepath.Join(root, "sub")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	Dispatch(top, fsnotify.Event{Name: path, Op: fsnotify.Create})

	if len(top.Root.Directories()) != 1 {
		t.Fatalf("expected sub to be added, got %v", top.Root.Directories())
	}
	if top.Accumulator.Len() != 1 || top.Accumulator.Paths()[0] != "sub/" {
		t.Errorf("expected sub/ to be marked changed, got %v", top.Accumulator.Paths())
	}
}

func TestDispatchSelfDeleteOfWatchedDir(t *testing.T) {
	top := newTestTop(t)
	sub := top.AddDir(top.Root, "sub")
	top.WatchIndex.Add(sub)

	Dispatch(top, fsnotify.Event{Name: sub.absolutePath, Op: fsnotify.Remove})

	if len(top.Root.Directories()) != 0 {
		t.Error("expected sub to be removed on self-delete")
	}
}

func TestDispatchUnknownParentIsDropped(t *testing.T) {
	top := newTestTop(t)
	// No WatchIndex entries at all: every event must be silently dropped.
	Dispatch(top, fsnotify.Event{Name: filepath.Join(top.RootPath, "a.txt"), Op: fsnotify.Create})
	if len(top.Root.Files()) != 0 {
		t.Error("expected event for an unknown parent to be dropped")
	}
}

func TestDispatchFilteredLeafIsDropped(t *testing.T) {
	top := newTestTop(t)
	top.WatchIndex.Add(top.Root)
	Dispatch(top, fsnotify.Event{Name: filepath.Join(top.RootPath, "x.tmp"), Op: fsnotify.Create})
	if len(top.Root.Files()) != 0 {
		t.Error("expected filtered leaf to be dropped")
	}
}
