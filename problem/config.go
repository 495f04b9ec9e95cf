package problem

import "github.com/tailored-agentic-units/fuse/observability"

// Config holds Problem initialization parameters.
type Config struct {
	// Observer names the observer to resolve ("noop", "slog", ...).
	Observer string `json:"observer" yaml:"observer"`

	// Level is the minimum severity forwarded to the observer. Zero forwards
	// every event.
	Level observability.Level `json:"level,omitempty" yaml:"level,omitempty"`

	Parallel ParallelConfig `json:"parallel" yaml:"parallel"`
}

// DefaultConfig returns the default problem configuration.
func DefaultConfig() Config {
	return Config{
		Observer: "slog",
		Parallel: DefaultParallelConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.Level != 0 {
		c.Level = source.Level
	}
	c.Parallel.Merge(&source.Parallel)
}
