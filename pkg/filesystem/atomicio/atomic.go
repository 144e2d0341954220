// Package atomicio implements the single "write to a tempfile, then
// rename" publication helper used throughout gosyncd: the Dump Writer
// (changed-paths files), the status file, the excludes file, and the
// Transfer-List Collator's output all publish through WriteFile so that
// readers of their directories only ever observe fully-formed files.
package atomicio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosyncd/gosyncd/pkg/logging"
	"github.com/gosyncd/gosyncd/pkg/must"
)

// temporaryNamePrefix is the file name prefix used for the hidden
// intermediate temporary file created during a write.
const temporaryNamePrefix = ".gosyncd-tmp-"

// WriteFile writes data to path by creating a securely-named temporary
// file in the same directory, writing data to it, closing it, setting its
// permissions, and renaming it onto path. On any failure before the
// rename, the temporary file is removed and path is left untouched. On a
// rename failure, the temporary file is likewise removed.
func WriteFile(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	directory := filepath.Dir(path)

	temporary, err := os.CreateTemp(directory, temporaryNamePrefix)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}

	if _, err := temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}

	if err := temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if err := os.Chmod(temporary.Name(), permissions); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return fmt.Errorf("unable to change file permissions: %w", err)
	}

	if err := rename(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		if isCrossDeviceError(err) {
			return fmt.Errorf("unable to rename file into place (temporary directory and destination are on different filesystems): %w", err)
		}
		return fmt.Errorf("unable to rename file into place: %w", err)
	}

	return nil
}
