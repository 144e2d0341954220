package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosyncd/gosyncd/pkg/cmd"
	"github.com/gosyncd/gosyncd/pkg/gosyncd"
)

func versionMain(command *cobra.Command, arguments []string) error {
	fmt.Println(gosyncd.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(versionMain),
}
