package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from defaults, an optional YAML file and the
// environment, in that order of precedence.
type Loader struct {
	path    string
	sources []string
}

// NewLoader creates a loader reading path. An empty path skips the file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load builds and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	l.sources = []string{"defaults"}

	if l.path != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	l.sources = append(l.sources, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Sources lists where the last Load read configuration from.
func (l *Loader) Sources() []string {
	return l.sources
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) loadFile(cfg *Config) error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", l.path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.path, err)
	}
	l.sources = append(l.sources, l.path)
	return nil
}
