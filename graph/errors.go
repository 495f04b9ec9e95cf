package graph

import "errors"

// Sentinel errors for graph and snapshot operations.
var (
	ErrNilVariable      = errors.New("variable is nil")
	ErrKindConflict     = errors.New("identity already held by a different kind")
	ErrNoSnapshotStore  = errors.New("snapshots are disabled")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
