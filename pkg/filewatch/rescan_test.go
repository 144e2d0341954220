package filewatch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanPopulatesFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "ignored~"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	canon, err := Canonicalize(root)
	if err != nil {
		t.Fatal(err)
	}
	top := NewTopDirectory(canon, 10, NewFilter(nil), false, nil)

	if ok := scan(top, top.Root, false); !ok {
		t.Fatal("expected scan to succeed")
	}

	if len(top.Root.Files()) != 1 || top.Root.Files()[0].Name() != "a.txt" {
		t.Errorf("expected exactly a.txt, got %v", top.Root.Files())
	}
	if len(top.Root.Directories()) != 1 || top.Root.Directories()[0].Name() != "sub" {
		t.Errorf("expected exactly sub, got %v", top.Root.Directories())
	}
	sub := top.Root.Directories()[0]
	if len(sub.Files()) != 1 || sub.Files()[0].Name() != "b.txt" {
		t.Errorf("expected sub to contain b.txt, got %v", sub.Files())
	}
}

func TestScanRemovesVanishedEntries(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "a.txt")
	if err := os.WriteFile(filePath, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	canon, err := Canonicalize(root)
	if err != nil {
		t.Fatal(err)
	}
	top := NewTopDirectory(canon, 10, NewFilter(nil), false, nil)
	scan(top, top.Root, false)
	if len(top.Root.Files()) != 1 {
		t.Fatalf("expected one file after first scan, got %d", len(top.Root.Files()))
	}

	if err := os.Remove(filePath); err != nil {
		t.Fatal(err)
	}
	scan(top, top.Root, false)
	if len(top.Root.Files()) != 0 {
		t.Errorf("expected file to be removed from the model, got %v", top.Root.Files())
	}
}

func TestScanRefusesBeyondMaxDepth(t *testing.T) {
	top := newTestTop(t)
	top.MaxDepth = 0
	if ok := scan(top, top.Root, false); !ok {
		t.Fatal("expected the root itself to always be scannable")
	}

	deep := &DirectoryNode{
		absolutePath: top.RootPath,
		top:          top,
		parent:       top.Root,
		depth:        1,
	}
	if ok := scan(top, deep, false); ok {
		t.Error("expected a directory deeper than max depth to be refused")
	}
}

func TestCheckFileChangedDetectsModification(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "a.txt")
	if err := os.WriteFile(filePath, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	canon, err := Canonicalize(root)
	if err != nil {
		t.Fatal(err)
	}
	top := NewTopDirectory(canon, 10, NewFilter(nil), false, nil)
	scan(top, top.Root, false)
	file := top.Root.Files()[0]

	if top.Accumulator.Len() != 1 || top.Accumulator.Paths()[0] != "a.txt" {
		t.Fatalf("expected the first scan to record a.txt as newly seen, got %v", top.Accumulator.Paths())
	}
	top.Accumulator.Clear()

	if err := os.WriteFile(filePath, []byte("hello, much longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	checkFileChanged(top, file)

	if top.Accumulator.Len() != 1 || top.Accumulator.Paths()[0] != "a.txt" {
		t.Errorf("expected a.txt to be recorded as changed, got %v", top.Accumulator.Paths())
	}
}

func TestCheckFileChangedHandlesDisappearance(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "a.txt")
	if err := os.WriteFile(filePath, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	canon, err := Canonicalize(root)
	if err != nil {
		t.Fatal(err)
	}
	top := NewTopDirectory(canon, 10, NewFilter(nil), false, nil)
	scan(top, top.Root, false)
	file := top.Root.Files()[0]

	if err := os.Remove(filePath); err != nil {
		t.Fatal(err)
	}
	checkFileChanged(top, file)

	if len(top.Root.Files()) != 0 {
		t.Error("expected the file node to be removed")
	}
	if top.Accumulator.Len() != 2 || top.Accumulator.Paths()[1] != "/" {
		t.Errorf("expected the root to be marked changed after the first scan's a.txt, got %v", top.Accumulator.Paths())
	}
}
