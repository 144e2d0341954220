package cmd

import (
	"github.com/spf13/cobra"
)

// Mainify wraps a Cobra entry point that returns an error into the
// standard Run signature Cobra expects, calling Fatal on failure. This
// lets an entry point rely on defer-based cleanup, which a direct os.Exit
// call from within the entry point itself would skip.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}
