package main

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gosyncd/gosyncd/pkg/cmd"
	"github.com/gosyncd/gosyncd/pkg/filewatch"
	"github.com/gosyncd/gosyncd/pkg/logging"
)

var watchConfiguration struct {
	root     string
	output   string
	maxDepth int
	excludes []string

	fullScanInterval    time.Duration
	changeQueueInterval time.Duration
	changeQueueTimeout  time.Duration
	dumpInterval        time.Duration

	logLevel string
}

func watchMain(command *cobra.Command, arguments []string) error {
	level, ok := logging.NameToLevel(watchConfiguration.logLevel)
	if !ok {
		return fmt.Errorf("invalid log level: %s", watchConfiguration.logLevel)
	}
	logger := logging.NewStandardError(level)

	root, err := filewatch.Canonicalize(watchConfiguration.root)
	if err != nil {
		return fmt.Errorf("unable to canonicalize root: %w", err)
	}

	notifier, err := fsnotify.NewWatcher()
	notificationsEnabled := err == nil
	if err != nil {
		logger.Warnf("kernel notifications unavailable, falling back to polling: %v", err)
	}

	filter := filewatch.NewFilter(watchConfiguration.excludes)
	top := filewatch.NewTopDirectory(root, watchConfiguration.maxDepth, filter, notificationsEnabled, logger)
	if notificationsEnabled {
		top.SetNotifier(notifier)
		defer notifier.Close()
	}

	loop := filewatch.NewLoop(top, filewatch.LoopConfig{
		FullScanInterval:       watchConfiguration.fullScanInterval,
		ChangeQueueInterval:    watchConfiguration.changeQueueInterval,
		ChangeQueueMaxDuration: watchConfiguration.changeQueueTimeout,
		DumpInterval:           watchConfiguration.dumpInterval,
		DumpDir:                watchConfiguration.output,
	})

	ctx, stop := cmd.SignalContext()
	defer stop()

	return loop.Run(ctx)
}

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory tree and publish changed-path files",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(watchMain),
}

func init() {
	flags := watchCommand.Flags()
	flags.StringVar(&watchConfiguration.root, "root", "", "Directory tree to watch")
	flags.StringVar(&watchConfiguration.output, "output", "", "Directory to publish changed-path files into")
	flags.IntVar(&watchConfiguration.maxDepth, "max-depth", 64, "Maximum directory depth to track")
	flags.StringArrayVar(&watchConfiguration.excludes, "exclude", nil, "Shell-glob leaf name pattern to exclude (repeatable)")
	flags.DurationVar(&watchConfiguration.fullScanInterval, "full-scan-interval", 10*time.Minute, "Interval between full recursive rescans")
	flags.DurationVar(&watchConfiguration.changeQueueInterval, "change-queue-interval", time.Second, "Interval between Change Queue drains")
	flags.DurationVar(&watchConfiguration.changeQueueTimeout, "change-queue-timeout", 500*time.Millisecond, "Maximum duration of a single Change Queue drain")
	flags.DurationVar(&watchConfiguration.dumpInterval, "dump-interval", time.Second, "Interval between changed-path file publications")
	flags.StringVar(&watchConfiguration.logLevel, "log-level", "info", "Log level (disabled, error, warn, info, debug)")

	watchCommand.MarkFlagRequired("root")
	watchCommand.MarkFlagRequired("output")
}
