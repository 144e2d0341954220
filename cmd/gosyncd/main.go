// Command gosyncd watches a directory tree for changes and drives
// scheduled full and incremental transfers of it to a destination via an
// external transfer tool.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCommand = &cobra.Command{
	Use:   "gosyncd",
	Short: "gosyncd watches a directory tree and drives scheduled transfers of it",
}

func init() {
	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		watchCommand,
		superviseCommand,
		collateCommand,
		statusCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
