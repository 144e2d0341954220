package filewatch

// Accumulator is the Changed-Paths Accumulator: an ordered,
// append-with-dedup buffer of user-visible relative paths. Directory
// paths carry a trailing separator; file paths do not.
type Accumulator struct {
	paths []string
	seen  map[string]struct{}
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Add records path if it is not already present.
func (a *Accumulator) Add(path string) {
	if _, ok := a.seen[path]; ok {
		return
	}
	a.seen[path] = struct{}{}
	a.paths = append(a.paths, path)
}

// Len returns the number of distinct paths currently accumulated.
func (a *Accumulator) Len() int {
	return len(a.paths)
}

// Paths returns a copy of the accumulated paths in insertion order.
func (a *Accumulator) Paths() []string {
	out := make([]string, len(a.paths))
	copy(out, a.paths)
	return out
}

// Clear empties the accumulator. Called after the Dump Writer
// successfully publishes a batch.
func (a *Accumulator) Clear() {
	a.paths = nil
	a.seen = make(map[string]struct{})
}
