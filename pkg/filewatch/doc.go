// Package filewatch implements the change-detection engine: an in-memory
// model of a watched directory tree (the Tree Model and Watch Index), a
// deferred-work queue that reconciles kernel events and periodic rescans
// against that model (the Change Queue and Rescan Engine), and a
// single-threaded scheduler that drives the whole thing and periodically
// publishes a deduplicated list of changed paths (the Watcher Loop and
// Dump Writer).
//
// The package guarantees that every change to the watched tree eventually
// appears at least once in a published changed-paths file; it makes no
// guarantee about the ordering of paths within one batch, and it does not
// itself transfer data, hash content, or compare against a destination.
package filewatch
