// Package collate implements the Transfer-List Collator: it drains a
// watcher's changed-paths output directory into one deduplicated,
// existence-checked file list suitable for a partial transfer's
// --files-from argument.
package collate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosyncd/gosyncd/pkg/filesystem/atomicio"
	"github.com/gosyncd/gosyncd/pkg/logging"
)

// outputPermissions is the mode given to a published transfer-list file.
const outputPermissions = 0o644

// Collate reads every regular, non-dotfile file in queueDir (in sorted
// order), deduplicates their lines in memory, drops any line whose path
// no longer exists under sourceRoot, and deletes each input file once it
// has been processed (regardless of whether any of its lines survived).
//
// If any line survives, the result is published atomically to
// outputPath and Collate returns its count. If nothing survives,
// outputPath is left untouched and Collate returns zero: the caller
// should treat that as "nothing to transfer" and skip invoking the
// transfer tool.
func Collate(sourceRoot, queueDir, outputPath string, logger *logging.Logger) (int, error) {
	entries, err := os.ReadDir(queueDir)
	if err != nil {
		return 0, fmt.Errorf("unable to list change-queue directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	seen := make(map[string]struct{})
	var lines []string

	for _, name := range names {
		path := filepath.Join(queueDir, name)
		collected, err := collateFile(sourceRoot, path, seen, logger)
		if err != nil {
			logger.Warnf("unable to collate %q: %v", path, err)
		}
		lines = append(lines, collected...)

		if err := os.Remove(path); err != nil {
			logger.Warnf("unable to remove collated change file %q: %v", path, err)
		}
	}

	if len(lines) == 0 {
		return 0, nil
	}

	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	if err := atomicio.WriteFile(outputPath, []byte(builder.String()), outputPermissions, logger); err != nil {
		return 0, fmt.Errorf("unable to publish transfer list: %w", err)
	}

	return len(lines), nil
}

// collateFile reads one changed-paths file, appending to seen any newly
// observed line and returning only the lines (from this file) that are
// both new and still present under sourceRoot.
func collateFile(sourceRoot, path string, seen map[string]struct{}, logger *logging.Logger) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Warnf("unable to close %q: %v", path, err)
		}
	}()

	var kept []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}

		target := filepath.Join(sourceRoot, strings.TrimSuffix(line, "/"))
		if _, err := os.Lstat(target); err != nil {
			continue
		}
		kept = append(kept, line)
	}
	if err := scanner.Err(); err != nil {
		return kept, fmt.Errorf("unable to read: %w", err)
	}

	return kept, nil
}
