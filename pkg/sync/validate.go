package sync

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/gosyncd/gosyncd/pkg/environment"
)

// shell is the interpreter validation and transfer-support commands are
// spawned through.
const shell = "/bin/sh"

// RunValidation runs command through the shell, treating a non-zero exit
// as a reported validation failure. Its standard error is directed to
// stderr (the sync set's captured-stderr scratch file).
func RunValidation(command string, stderr io.Writer) error {
	if command == "" {
		return nil
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Env = environment.Default()
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("validation command failed: %w", err)
	}
	return nil
}
