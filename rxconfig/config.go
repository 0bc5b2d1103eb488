// Package rxconfig loads the scheduler configuration for the demo CLI from
// YAML, the same gopkg.in/yaml.v3 unmarshal-into-a-tagged-struct style
// cuemby/warren's cmd/warren/apply.go uses for its own resource manifests.
package rxconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig describes one named scheduler to construct for the demo
// CLI: its kind (immediate, queue, or delay) and, for delay schedulers, the
// default leeway to apply to repeating schedules that don't specify one.
type SchedulerConfig struct {
	Name   string        `yaml:"name"`
	Kind   string        `yaml:"kind"`
	Leeway time.Duration `yaml:"leeway,omitempty"`
}

// Config is the top-level document a demo invocation loads: which
// schedulers to stand up and how chatty logging should be.
type Config struct {
	LogLevel   string            `yaml:"logLevel"`
	Schedulers []SchedulerConfig `yaml:"schedulers"`
}

// Default returns the configuration the demo CLI falls back to when no file
// is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Schedulers: []SchedulerConfig{
			{Name: "main", Kind: "queue"},
			{Name: "timers", Kind: "delay", Leeway: 50 * time.Millisecond},
		},
	}
}

// Load reads and parses a Config from the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rxconfig: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rxconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}
