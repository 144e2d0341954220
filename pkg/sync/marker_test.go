package sync

import (
	"path/filepath"
	"testing"
	"time"
)

func TestReadMarkerAbsentReturnsZeroTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")
	when, err := ReadMarker(path)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if !when.IsZero() {
		t.Errorf("expected zero time for absent marker, got %v", when)
	}
}

func TestWriteMarkerThenReadMarkerRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")
	stamp := time.Unix(1700000000, 0)

	if err := WriteMarker(path, stamp); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}

	when, err := ReadMarker(path)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if !when.Equal(stamp) {
		t.Errorf("expected marker mtime %v, got %v", stamp, when)
	}
}

func TestWriteMarkerUpdatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")
	first := time.Unix(1700000000, 0)
	second := time.Unix(1700003600, 0)

	if err := WriteMarker(path, first); err != nil {
		t.Fatalf("WriteMarker (first): %v", err)
	}
	if err := WriteMarker(path, second); err != nil {
		t.Fatalf("WriteMarker (second): %v", err)
	}

	when, err := ReadMarker(path)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if !when.Equal(second) {
		t.Errorf("expected updated mtime %v, got %v", second, when)
	}
}
