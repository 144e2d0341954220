package sync

import (
	"os"
	"time"
)

const markerFilePermissions = 0o644

// ReadMarker returns the mtime of the zero-length marker file at path, or
// the zero time if it does not exist (seeding next-sync scheduling at
// startup, treating an absent marker as "never synced").
func ReadMarker(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// WriteMarker records now as the marker's mtime, creating the file if it
// doesn't already exist.
func WriteMarker(path string, now time.Time) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, markerFilePermissions)
	if err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Chtimes(path, now, now)
}
