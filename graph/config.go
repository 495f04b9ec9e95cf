package graph

import "github.com/tailored-agentic-units/fuse/observability"

// Config defines how a Graph is constructed. Observer and Snapshots are names
// resolved through their registries, so the whole configuration can be read
// from a file.
//
// Example JSON:
//
//	{
//	  "name": "odometry",
//	  "observer": "slog",
//	  "level": "info",
//	  "snapshots": "memory"
//	}
type Config struct {
	// Name identifies the graph in events.
	Name string `json:"name" yaml:"name"`

	// Observer names the observer to resolve ("noop", "slog", ...).
	Observer string `json:"observer" yaml:"observer"`

	// Level is the minimum severity forwarded to the observer. Zero forwards
	// every event.
	Level observability.Level `json:"level,omitempty" yaml:"level,omitempty"`

	// Snapshots names the SnapshotStore used by Checkpoint. Empty disables
	// checkpointing.
	Snapshots string `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
}

// DefaultConfig returns a configuration logging through slog with in-memory
// snapshots.
func DefaultConfig() Config {
	return Config{
		Name:      "graph",
		Observer:  "slog",
		Snapshots: "memory",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.Level != 0 {
		c.Level = source.Level
	}

	if source.Snapshots != "" {
		c.Snapshots = source.Snapshots
	}
}
