// Package config loads sync-set configuration: a single, already-final
// YAML document describing one or more sync sets. It deliberately
// supports neither variable substitution nor include directives; callers
// wanting those need to resolve them before the document reaches this
// package.
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// namespace seeds the stable, per-set working-directory and lock-file
// identifiers computed by Identifier. It has no meaning beyond providing
// a fixed input to uuid.NewSHA1 alongside each set's name.
var namespace = uuid.MustParse("b96d3c9e-9f0e-4b63-9f59-9e9d9a6d9d52")

// SyncSet describes one configured synchronization relationship between
// a source and a destination tree.
type SyncSet struct {
	// Name identifies this set in the status file and in log output, and
	// seeds its stable working-directory/lock identifier.
	Name string `yaml:"name"`

	// Source and Destination are passed to the transfer tool.
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`

	// Tool is the transfer executable; defaults to "rsync" if empty.
	Tool string `yaml:"tool"`

	// MaxDepth bounds the watcher's tree depth; defaults to DefaultMaxDepth
	// if zero.
	MaxDepth int `yaml:"maxDepth"`

	// Excludes is the shell-glob exclusion list applied by both the
	// watcher's Path Filter and the transfer tool's --exclude-from.
	Excludes []string `yaml:"excludes"`

	// SourceValidate and DestinationValidate are shell commands run
	// before any transfer; a non-zero exit fails validation. Either may
	// be empty, in which case that side is considered always valid.
	SourceValidate      string `yaml:"sourceValidate"`
	DestinationValidate string `yaml:"destinationValidate"`

	// FullInterval and FullRetry schedule full syncs; a zero FullInterval
	// disables full syncs for this set.
	FullInterval Duration `yaml:"fullInterval"`
	FullRetry    Duration `yaml:"fullRetry"`

	// PartialInterval and PartialRetry schedule partial (watcher-driven)
	// syncs; a zero PartialInterval disables the watcher child entirely.
	PartialInterval Duration `yaml:"partialInterval"`
	PartialRetry    Duration `yaml:"partialRetry"`

	// SyncLock names an advisory lock file shared across sets that must
	// not transfer concurrently (e.g. sets with overlapping destinations).
	// Empty disables locking for this set.
	SyncLock string `yaml:"syncLock"`
}

// DefaultMaxDepth is used for a sync set whose MaxDepth is unset.
const DefaultMaxDepth = 64

// DefaultTool is used for a sync set whose Tool is unset.
const DefaultTool = "rsync"

// Document is the top-level shape of a sync-set configuration file: a
// single flat list, without variable substitution or includes.
type Document struct {
	Sets []SyncSet `yaml:"sets"`
}

// Load reads and parses the sync-set configuration at path.
func Load(path string) ([]SyncSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration file: %w", err)
	}

	var document Document
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("unable to parse configuration file: %w", err)
	}

	for i := range document.Sets {
		applyDefaults(&document.Sets[i])
		if err := validate(&document.Sets[i]); err != nil {
			return nil, fmt.Errorf("sync set %d: %w", i, err)
		}
	}

	return document.Sets, nil
}

func applyDefaults(set *SyncSet) {
	if set.MaxDepth == 0 {
		set.MaxDepth = DefaultMaxDepth
	}
	if set.Tool == "" {
		set.Tool = DefaultTool
	}
}

func validate(set *SyncSet) error {
	if set.Name == "" {
		return fmt.Errorf("missing name")
	}
	if set.Source == "" {
		return fmt.Errorf("sync set %q: missing source", set.Name)
	}
	if set.Destination == "" {
		return fmt.Errorf("sync set %q: missing destination", set.Name)
	}
	if set.FullInterval.Duration() < 0 || set.PartialInterval.Duration() < 0 {
		return fmt.Errorf("sync set %q: negative sync interval", set.Name)
	}
	return nil
}

// Identifier computes a stable identifier for set, derived from its name
// so that the same set name always yields the same identifier across
// supervisor restarts (used to name the set's scratch working directory
// and, absent an explicit SyncLock, its lock file).
func Identifier(set SyncSet) string {
	return uuid.NewSHA1(namespace, []byte(set.Name)).String()
}
