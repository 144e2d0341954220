package atomicio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gosyncd/gosyncd/pkg/logging"
)

func TestWriteFileNonExistentDirectory(t *testing.T) {
	if WriteFile("/does/not/exist/file", []byte{}, 0600, nil) == nil {
		t.Error("atomic file write did not fail for non-existent directory")
	}
}

func TestWriteFile(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "file")
	contents := []byte{0, 1, 2, 3, 4, 5, 6}

	if err := WriteFile(target, contents, 0600, logging.NewStandardError(logging.LevelDisabled)); err != nil {
		t.Fatal("atomic file write failed:", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal("unable to read back file:", err)
	}
	if !bytes.Equal(data, contents) {
		t.Error("file contents did not match expected")
	}
}

func TestWriteFileLeavesNoTemporaryOnSuccess(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "file")

	if err := WriteFile(target, []byte("ok"), 0600, nil); err != nil {
		t.Fatal("atomic file write failed:", err)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal("unable to list directory:", err)
	}
	if len(entries) != 1 || entries[0].Name() != "file" {
		t.Errorf("unexpected directory contents after write: %v", entries)
	}
}
