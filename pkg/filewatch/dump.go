package filewatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosyncd/gosyncd/pkg/filesystem/atomicio"
)

// dumpFilePermissions is the mode given to a published changed-paths file.
const dumpFilePermissions = 0o644

// DumpWriter atomically publishes the Top Directory's currently
// accumulated changed paths to a new file in dir, one path per line. It is
// a no-op (and leaves the accumulator untouched) if there is nothing to
// publish. On success, the accumulator is cleared; on failure, it is left
// intact so the next dump retries with the same content.
func DumpWriter(top *TopDirectory, dir string) error {
	paths := top.Accumulator.Paths()
	if len(paths) == 0 {
		return nil
	}

	var builder strings.Builder
	for _, path := range paths {
		builder.WriteString(path)
		builder.WriteByte('\n')
	}

	name := fmt.Sprintf("%s.%d", time.Now().Format("20060102-150405"), os.Getpid())
	target := filepath.Join(dir, name)

	if err := atomicio.WriteFile(target, []byte(builder.String()), dumpFilePermissions, top.Logger); err != nil {
		return fmt.Errorf("unable to publish changed-paths file: %w", err)
	}

	top.Accumulator.Clear()
	return nil
}
