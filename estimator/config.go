package estimator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/fuse/graph"
	"github.com/tailored-agentic-units/fuse/inspect"
	"github.com/tailored-agentic-units/fuse/problem"
)

// Config holds initialization parameters for all estimator subsystems.
// Each section delegates to that subsystem's config-driven constructor.
type Config struct {
	Graph   graph.Config   `json:"graph" yaml:"graph"`
	Problem problem.Config `json:"problem" yaml:"problem"`
	Inspect inspect.Config `json:"inspect" yaml:"inspect"`

	// Metrics counts every emitted event in a prometheus registry served at
	// /metrics by Handler.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Graph:   graph.DefaultConfig(),
		Problem: problem.DefaultConfig(),
		Inspect: inspect.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Graph.Merge(&source.Graph)
	c.Problem.Merge(&source.Problem)
	c.Inspect.Merge(&source.Inspect)

	if source.Metrics {
		c.Metrics = true
	}
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. Files ending in .yaml or .yml are parsed as YAML, anything
// else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
