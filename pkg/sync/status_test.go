package sync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteStatusProducesExpectedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")

	state := NewState(dir, filepath.Join(dir, "excludes"), filepath.Join(dir, "stderr"))
	state.WatcherPID = 4242

	if err := WriteStatus(path, "example", state, nil); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"section : example",
		"current action : WAITING",
		"watcher process pid : 4242",
		"last full sync status : -",
		"working directory : " + dir,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected status file to contain %q, got:\n%s", want, content)
		}
	}
	if !strings.HasSuffix(content, "\n\n") {
		t.Error("expected a trailing blank line")
	}
}

func TestWriteStatusNoWatcherPID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	state := NewState(dir, "", "")

	if err := WriteStatus(path, "example", state, nil); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "watcher process pid : -") {
		t.Errorf("expected dash for absent watcher pid, got:\n%s", string(data))
	}
}
