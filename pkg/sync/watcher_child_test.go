package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeWatcherScript writes a small shell script that ignores its
// arguments and sleeps, standing in for a real "gosyncd watch" process in
// tests that only care about process lifecycle management.
func fakeWatcherScript(t *testing.T, sleep string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-watch.sh")
	content := "#!/bin/sh\nsleep " + sleep + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpawnWatcherReapAfterNaturalExit(t *testing.T) {
	script := fakeWatcherScript(t, "0")
	child, err := SpawnWatcher(script, "/src", t.TempDir(), 10, nil, nil)
	if err != nil {
		t.Fatalf("SpawnWatcher: %v", err)
	}
	if child.PID() <= 0 {
		t.Fatalf("expected a positive pid, got %d", child.PID())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		exited, reapErr := child.Reap()
		if exited {
			if reapErr != nil {
				t.Errorf("expected clean exit, got %v", reapErr)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for watcher child to exit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSpawnWatcherTerminate(t *testing.T) {
	script := fakeWatcherScript(t, "30")
	child, err := SpawnWatcher(script, "/src", t.TempDir(), 10, []string{".git"}, nil)
	if err != nil {
		t.Fatalf("SpawnWatcher: %v", err)
	}

	if err := child.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		exited, _ := child.Reap()
		if exited {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for terminated watcher child to be reaped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
