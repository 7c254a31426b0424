// Package config loads the headless CLI's run configuration, merging an
// embedded default set with an optional YAML override file. Grounded on
// pthm-soup's config package: embedded defaults.yaml plus a second
// yaml.Unmarshal pass over the same struct so a partial override file
// only touches the fields it names.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxlab/protocell/seed"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the headless driver's run configuration. GridSize, TickRate,
// Preset and Debug each have an equivalent persistent flag on every
// subcommand; a flag explicitly set on the command line overrides
// whatever Load produced. MaxBricks and Features have no flag.
type Config struct {
	GridSize int       `yaml:"grid_size"`
	TickRate int       `yaml:"tick_rate"`
	Preset   seed.Name `yaml:"preset"`
	Debug    bool      `yaml:"debug"`

	// MaxBricks is read and recorded but nothing consumes it: the sparse
	// tier's pool size comes from sparseMaxBricks() in the root package,
	// which derives it from a fixed byte budget.
	MaxBricks int `yaml:"max_bricks"`

	Features FeatureToggles `yaml:"features"`
}

// FeatureToggles disables individual behaviors for debugging or
// isolating one mechanic's cost during a benchmark run. All default
// true; the headless command applies a false toggle as a SetParam edit
// rather than a code path change, so disabling a feature mid-run is as
// cheap as any other parameter edit.
type FeatureToggles struct {
	TemperatureDiffusion bool `yaml:"temperature_diffusion"`
	Predation            bool `yaml:"predation"`
	Replication          bool `yaml:"replication"`
}

// Load reads defaults.yaml, then overlays path if non-empty. An empty
// path returns the embedded defaults untouched.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
