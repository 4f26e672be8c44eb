// Package config provides configuration types and defaults for the
// unreal-companion CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Store backends selectable via store.backend.
const (
	StoreBackendYAML   = "yaml"
	StoreBackendSQLite = "sqlite"
)

// Config holds all configuration options for unreal-companion.
type Config struct {
	// GlobalDir overrides the global companion directory. Empty means the
	// UNREAL_COMPANION_HOME env var or ~/.unreal-companion.
	GlobalDir string `mapstructure:"global_dir"`

	// ContentCacheTTL bounds how long hydrated step content is served from
	// cache between resolutions.
	ContentCacheTTL time.Duration `mapstructure:"content_cache_ttl"`

	// WatchDefinitions re-resolves definitions when files under a scope
	// root change.
	WatchDefinitions bool `mapstructure:"watch_definitions"`

	Store     StoreConfig     `mapstructure:"store"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// StoreConfig selects and tunes the session persistence backend.
type StoreConfig struct {
	// Backend is "yaml" (workflow-status.yaml) or "sqlite".
	Backend string `mapstructure:"backend"`
}

// SyncConfig tunes the legacy session import.
type SyncConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `mapstructure:"level"`

	// File is the log file path. Empty means logging is disabled.
	File string `mapstructure:"file"`
}

// TelemetryConfig toggles trace export.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		ContentCacheTTL:  5 * time.Minute,
		WatchDefinitions: false,
		Store: StoreConfig{
			Backend: StoreBackendYAML,
		},
		Sync: SyncConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Validate checks configuration for errors.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendYAML, StoreBackendSQLite:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (expected %q or %q)",
			c.Store.Backend, StoreBackendYAML, StoreBackendSQLite)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync.timeout: must be positive, got %s", c.Sync.Timeout)
	}
	if c.ContentCacheTTL < 0 {
		return fmt.Errorf("content_cache_ttl: must not be negative, got %s", c.ContentCacheTTL)
	}
	return nil
}

// Load reads the config file at path, layered over Defaults. A missing file
// is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("checking config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Unreal Companion Configuration

# Override the global companion directory (default: ~/.unreal-companion,
# or the UNREAL_COMPANION_HOME environment variable)
# global_dir: /path/to/dir

# How long hydrated step content stays cached between resolutions
content_cache_ttl: 5m

# Re-resolve workflow and agent definitions when their files change
watch_definitions: false

# Session persistence
store:
  # yaml   - per-project workflow-status.yaml (default)
  # sqlite - embedded database under .unreal-companion/
  backend: yaml

# Legacy session import
sync:
  timeout: 5s

# Diagnostic logging
log:
  level: info    # debug, info, warn, error
  # file: /path/to/companion.log

# Trace export (local stdout exporter)
telemetry:
  enabled: false
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
