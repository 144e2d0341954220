package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gosyncd/gosyncd/pkg/cmd"
	"github.com/gosyncd/gosyncd/pkg/collate"
	"github.com/gosyncd/gosyncd/pkg/logging"
)

var collateConfiguration struct {
	source string
	queue  string
	output string
}

func collateMain(command *cobra.Command, arguments []string) error {
	logger := logging.NewStandardError(logging.LevelWarn)

	count, err := collate.Collate(collateConfiguration.source, collateConfiguration.queue, collateConfiguration.output, logger)
	if err != nil {
		return fmt.Errorf("unable to collate changed paths: %w", err)
	}

	fmt.Printf("collated %d changed path(s)\n", count)
	return nil
}

var collateCommand = &cobra.Command{
	Use:   "collate",
	Short: "Collate a change-queue directory into a transfer-list file once",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(collateMain),
}

func init() {
	flags := collateCommand.Flags()
	flags.StringVar(&collateConfiguration.source, "source", "", "Source tree the changed paths are relative to")
	flags.StringVar(&collateConfiguration.queue, "queue", "", "Change-queue directory to consume")
	flags.StringVar(&collateConfiguration.output, "output", "", "Transfer-list file to write")

	collateCommand.MarkFlagRequired("source")
	collateCommand.MarkFlagRequired("queue")
	collateCommand.MarkFlagRequired("output")
}
