// Package must provides small helpers for performing cleanup operations
// whose errors can't sensibly be propagated (e.g. removing a temporary
// file after a different error has already occurred) but are still worth
// logging if they fail.
package must

import (
	"io"
	"os"

	"github.com/gosyncd/gosyncd/pkg/logging"
)

// Close closes c, logging a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %v", err)
	}
}

// OSRemove removes the file at path, logging a warning on failure.
func OSRemove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove %q: %v", path, err)
	}
}
