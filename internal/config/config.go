// Package config loads the optional flacman configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bamsammich/flacman/internal/transfer"
)

// Config represents the optional flacman configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. Unset keys stay nil so the
// CLI can tell them apart from explicit false or empty values.
type DefaultsConfig struct {
	Repository *string `toml:"repository"`
	Mode       *string `toml:"mode"`
	Overwrite  *bool   `toml:"overwrite"`
	Verify     *bool   `toml:"verify"`
	Recursive  *bool   `toml:"recursive"`
	AudioOnly  *bool   `toml:"audio_only"`
	Filter     *string `toml:"filter"`
}

// ThemeConfig holds optional color overrides for the summary line.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Muted  *string `toml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flacman", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path. A missing file yields a
// zero Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that can be rejected without touching the
// filesystem.
func (c Config) Validate() error {
	if c.Defaults.Mode != nil {
		if _, err := transfer.ParseMode(*c.Defaults.Mode); err != nil {
			return fmt.Errorf("defaults.mode: %w", err)
		}
	}
	if c.Defaults.Repository != nil && *c.Defaults.Repository == "" {
		return errors.New("defaults.repository: must not be empty")
	}
	return nil
}
