package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Path returns ~/.config/jsonstash/config.yaml, or "" if the home directory
// is unknown.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "jsonstash", "config.yaml")
}

// Load loads configuration from ~/.config/jsonstash/config.yaml. A missing or
// invalid file yields the defaults.
func Load() Config {
	cfg := DefaultConfig()

	path := Path()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	loaded := cfg
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg
	}
	return loaded
}

// LoadFile loads configuration from an explicit path on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}
