package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gosyncd/gosyncd/pkg/cmd"
	"github.com/gosyncd/gosyncd/pkg/config"
	"github.com/gosyncd/gosyncd/pkg/logging"
	syncpkg "github.com/gosyncd/gosyncd/pkg/sync"
)

var superviseConfiguration struct {
	configPath string
	setName    string
	stateDir   string
	logLevel   string
}

func findSet(sets []config.SyncSet, name string) (config.SyncSet, bool) {
	for _, set := range sets {
		if set.Name == name {
			return set, true
		}
	}
	return config.SyncSet{}, false
}

func superviseMain(command *cobra.Command, arguments []string) error {
	level, ok := logging.NameToLevel(superviseConfiguration.logLevel)
	if !ok {
		return fmt.Errorf("invalid log level: %s", superviseConfiguration.logLevel)
	}
	logger := logging.NewStandardError(level).Sublogger(superviseConfiguration.setName)

	sets, err := config.Load(superviseConfiguration.configPath)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	set, ok := findSet(sets, superviseConfiguration.setName)
	if !ok {
		return fmt.Errorf("no sync set named %q in %s", superviseConfiguration.setName, superviseConfiguration.configPath)
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("unable to determine current executable: %w", err)
	}

	identifier := config.Identifier(set)
	workingDirectory := filepath.Join(superviseConfiguration.stateDir, identifier)

	syncLockPath := set.SyncLock
	if syncLockPath == "" {
		syncLockPath = filepath.Join(superviseConfiguration.stateDir, "locks", identifier)
	}

	supervisorConfig := syncpkg.Config{
		Section:             set.Name,
		Source:              set.Source,
		Destination:         set.Destination,
		SelfExecutable:      self,
		WorkingDirectory:    workingDirectory,
		MaxDepth:            set.MaxDepth,
		Excludes:            set.Excludes,
		Tool:                set.Tool,
		SourceValidate:      set.SourceValidate,
		DestinationValidate: set.DestinationValidate,
		FullInterval:        set.FullInterval.Duration(),
		FullRetry:           set.FullRetry.Duration(),
		PartialInterval:     set.PartialInterval.Duration(),
		PartialRetry:        set.PartialRetry.Duration(),
		SyncLockPath:        syncLockPath,
		StatusPath:          filepath.Join(superviseConfiguration.stateDir, "status", identifier),
		FullMarkerPath:      filepath.Join(superviseConfiguration.stateDir, "markers", identifier+".full"),
		PartialMarkerPath:   filepath.Join(superviseConfiguration.stateDir, "markers", identifier+".partial"),
	}

	for _, dir := range []string{
		filepath.Dir(supervisorConfig.SyncLockPath),
		filepath.Dir(supervisorConfig.StatusPath),
		filepath.Dir(supervisorConfig.FullMarkerPath),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create state directory %q: %w", dir, err)
		}
	}

	supervisor := syncpkg.NewSupervisor(supervisorConfig, logger)

	ctx, stop := cmd.SignalContext()
	defer stop()

	return supervisor.Run(ctx)
}

var superviseCommand = &cobra.Command{
	Use:   "supervise",
	Short: "Run the sync supervisor for one configured sync set",
	Args:  cobra.NoArgs,
	Run:   cmd.Mainify(superviseMain),
}

func init() {
	flags := superviseCommand.Flags()
	flags.StringVar(&superviseConfiguration.configPath, "config", "", "Sync-set configuration file")
	flags.StringVar(&superviseConfiguration.setName, "set", "", "Name of the sync set to supervise")
	flags.StringVar(&superviseConfiguration.stateDir, "state-dir", defaultStateDir(), "Directory for working directories, status files, and markers")
	flags.StringVar(&superviseConfiguration.logLevel, "log-level", "info", "Log level (disabled, error, warn, info, debug)")

	superviseCommand.MarkFlagRequired("config")
	superviseCommand.MarkFlagRequired("set")
}

func defaultStateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "gosyncd")
	}
	return filepath.Join(os.TempDir(), "gosyncd")
}
