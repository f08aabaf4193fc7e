// Package config handles global Beacon configuration and database location
// discovery.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the global Beacon configuration.
type Config struct {
	// DatabaseFile overrides the default database location.
	DatabaseFile string `toml:"database_file"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown
	// rendering. Supported values are ANSI color codes ("0" to "255") or
	// hex colors ("#RRGGBB").
	Accent string `toml:"accent"`
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/beacon/config.toml first (XDG style),
// then falls back to the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "beacon", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "beacon", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// ResolveDatabasePath picks the database file with the precedence
// flag > $BEACON_DATABASE_FILE > config file > default user-data location.
func ResolveDatabasePath(flagValue string, cfg *Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("BEACON_DATABASE_FILE"); env != "" {
		return env, nil
	}
	if cfg != nil && cfg.DatabaseFile != "" {
		return cfg.DatabaseFile, nil
	}
	return DefaultDatabasePath()
}

// DefaultDatabasePath returns the default database location in the user data
// directory: beacon/beacon.db. The parent directory is created on open, not
// here.
func DefaultDatabasePath() (string, error) {
	dir, err := userDataDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user data directory: %w", err)
	}
	return filepath.Join(dir, "beacon", "beacon.db"), nil
}

func userDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return xdg, nil
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share"), nil
		}
	}
	// On macOS and Windows the config dir doubles as the data dir
	// (Application Support, AppData).
	return os.UserConfigDir()
}
