// Package config holds the immutable build configuration the core consumes.
// The driver hands the core a fully-populated Config; the core never reads
// the environment or the filesystem itself.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StandardLevel selects the language standard the front end accepts.
type StandardLevel int

const (
	StandardCore StandardLevel = iota
	StandardExtended
	StandardExperimental
)

func (l StandardLevel) String() string {
	switch l {
	case StandardCore:
		return "core"
	case StandardExtended:
		return "extended"
	case StandardExperimental:
		return "experimental"
	}
	return "unknown"
}

// Config is immutable after construction.
type Config struct {
	Standard        StandardLevel
	FeatureFlags    map[string]bool
	WarningDisables []string
}

// Default returns the configuration used when no lily.yaml is present.
func Default() Config {
	return Config{
		Standard:     StandardCore,
		FeatureFlags: map[string]bool{},
	}
}

// fileSchema is the on-disk shape of lily.yaml.
type fileSchema struct {
	Standard string          `yaml:"standard"`
	Features map[string]bool `yaml:"features"`
	Warnings struct {
		Disable []string `yaml:"disable"`
	} `yaml:"warnings"`
}

// Load reads a lily.yaml file. A missing file yields the default config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes.
func Parse(data []byte) (Config, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg := Default()
	switch fs.Standard {
	case "", "core":
		cfg.Standard = StandardCore
	case "extended":
		cfg.Standard = StandardExtended
	case "experimental":
		cfg.Standard = StandardExperimental
	default:
		return Config{}, fmt.Errorf("unknown standard level %q", fs.Standard)
	}
	if fs.Features != nil {
		cfg.FeatureFlags = fs.Features
	}
	cfg.WarningDisables = fs.Warnings.Disable
	return cfg, nil
}

// Feature reports whether a feature flag is enabled.
func (c Config) Feature(name string) bool {
	return c.FeatureFlags[name]
}
