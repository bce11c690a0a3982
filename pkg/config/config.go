// Package config holds the runtime settings for the geometry kernel, the
// build scheduler and logging, loaded from YAML.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Kernel  Kernel  `yaml:"kernel" json:"kernel"`
	Logging Logging `yaml:"logging" json:"logging"`
	Build   Build   `yaml:"build" json:"build"`
}

// Kernel controls how finely the sdfx kernel resolves geometry.
type Kernel struct {
	MeshCells      int `yaml:"mesh_cells" json:"mesh_cells"`           // marching cubes cells along the longest axis
	SplineSegments int `yaml:"spline_segments" json:"spline_segments"` // samples per spline span
	ArcSegments    int `yaml:"arc_segments" json:"arc_segments"`       // samples per arc
	VolumeSamples  int `yaml:"volume_samples" json:"volume_samples"`   // grid points per axis when measuring boolean cuts
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level" json:"level,omitempty"`   // debug, info, warn, error
	Format      string `yaml:"format" json:"format,omitempty"` // json, console
	Development bool   `yaml:"development" json:"development,omitempty"`
}

// Build configures assembly builds.
type Build struct {
	Parallelism int `yaml:"parallelism" json:"parallelism"` // max shapes built at once, 0 = GOMAXPROCS
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Kernel: Kernel{
			MeshCells:      200,
			SplineSegments: 16,
			ArcSegments:    32,
			VolumeSamples:  48,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Build: Build{
			Parallelism: 0,
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// applyEnvOverrides lets the environment adjust logging without a file.
func (c *Config) applyEnvOverrides() {
	if lvl := os.Getenv("PARACORE_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if f := os.Getenv("PARACORE_LOG_FORMAT"); f != "" {
		c.Logging.Format = f
	}
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values the kernel or logger
// cannot use.
func (c *Config) Validate() error {
	k := c.Kernel
	if k.MeshCells < 8 {
		return fmt.Errorf("kernel.mesh_cells must be at least 8, got %d", k.MeshCells)
	}
	if k.SplineSegments < 1 {
		return fmt.Errorf("kernel.spline_segments must be positive, got %d", k.SplineSegments)
	}
	if k.ArcSegments < 2 {
		return fmt.Errorf("kernel.arc_segments must be at least 2, got %d", k.ArcSegments)
	}
	if k.VolumeSamples < 4 {
		return fmt.Errorf("kernel.volume_samples must be at least 4, got %d", k.VolumeSamples)
	}
	if c.Build.Parallelism < 0 {
		return fmt.Errorf("build.parallelism must not be negative, got %d", c.Build.Parallelism)
	}

	level := strings.ToLower(c.Logging.Level)
	valid := false
	for _, l := range ValidLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}

// Limit returns the effective build concurrency limit.
func (b Build) Limit() int {
	if b.Parallelism > 0 {
		return b.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}
