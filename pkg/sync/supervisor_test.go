package sync

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSupervisorRunsFullSyncAndWritesMarker(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "source")
	destination := filepath.Join(root, "destination")
	working := filepath.Join(root, "working")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		t.Fatal(err)
	}

	config := Config{
		Section:          "example",
		Source:           source,
		Destination:      destination,
		WorkingDirectory: working,
		Tool:             "true",
		FullInterval:     50 * time.Millisecond,
		FullRetry:        50 * time.Millisecond,
		StatusPath:       filepath.Join(root, "status"),
		FullMarkerPath:   filepath.Join(root, "full-marker"),
		PartialMarkerPath: filepath.Join(root, "partial-marker"),
	}

	supervisor := NewSupervisor(config, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := supervisor.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(config.FullMarkerPath); err != nil {
		t.Errorf("expected full-sync marker to be written: %v", err)
	}
	if _, err := os.Stat(config.StatusPath); err == nil {
		t.Error("expected status file to be removed on exit")
	}
	if _, err := os.Stat(config.WorkingDirectory); err == nil {
		t.Error("expected working directory to be removed on exit")
	}
}

func TestSupervisorRecordsFailureWhenTransferToolFails(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "source")
	destination := filepath.Join(root, "destination")
	working := filepath.Join(root, "working")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		t.Fatal(err)
	}

	statusPath := filepath.Join(root, "status")
	config := Config{
		Section:           "example",
		Source:            source,
		Destination:       destination,
		WorkingDirectory:  working,
		Tool:              "false",
		FullInterval:      2 * time.Second,
		FullRetry:         2 * time.Second,
		StatusPath:        statusPath,
		FullMarkerPath:    filepath.Join(root, "full-marker"),
		PartialMarkerPath: filepath.Join(root, "partial-marker"),
	}

	supervisor := NewSupervisor(config, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var statusDuringRun string
	go func() {
		time.Sleep(150 * time.Millisecond)
		data, err := os.ReadFile(statusPath)
		if err == nil {
			statusDuringRun = string(data)
		}
	}()

	if err := supervisor.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(config.FullMarkerPath); err == nil {
		t.Error("expected no full-sync marker after a failed transfer")
	}
	if statusDuringRun != "" && !strings.Contains(statusDuringRun, "last full sync status : FAILED") {
		t.Errorf("expected status to record a failed full sync, got:\n%s", statusDuringRun)
	}
}
