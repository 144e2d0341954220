package filewatch

import (
	"path/filepath"
	"strings"
)

// Filter tests leaf names against an exclusion rule set. It never
// consults file type or contents: the decision is made purely on the
// leaf's name.
type Filter struct {
	// patterns are shell-style glob patterns, matched against the leaf
	// name only (never the full path). If empty, the default rule
	// (exclude names ending in "~" or ".tmp") applies instead.
	patterns []string
}

// NewFilter creates a Filter from a caller-supplied list of glob patterns.
// An empty or nil list selects the default rule.
func NewFilter(patterns []string) *Filter {
	cloned := make([]string, len(patterns))
	copy(cloned, patterns)
	return &Filter{patterns: cloned}
}

// Allowed reports whether leaf should be considered (true) or excluded
// (false). "." and ".." and the empty name are always excluded.
func (f *Filter) Allowed(leaf string) bool {
	if leaf == "" || leaf == "." || leaf == ".." {
		return false
	}

	if f == nil || len(f.patterns) == 0 {
		return !strings.HasSuffix(leaf, "~") && !strings.HasSuffix(leaf, ".tmp")
	}

	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, leaf); err == nil && matched {
			return false
		}
	}
	return true
}
