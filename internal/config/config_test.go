package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, StoreBackendYAML, cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.ContentCacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_OverridesLayerOverDefaults(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
store:
  backend: sqlite
sync:
  timeout: 30s
log:
  level: debug
`)

	assert.Equal(t, StoreBackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5*time.Minute, cfg.ContentCacheTTL)
}

func TestLoad_UnknownBackendFails(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: postgres\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := writeConfig(t, "store: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestValidate_NonPositiveSyncTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.Sync.Timeout = 0
	require.Error(t, cfg.Validate())
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func loadConfigFromYAML(t *testing.T, yaml string) Config {
	t.Helper()

	v := viper.New()
	v.SetConfigFile(writeConfig(t, yaml))
	require.NoError(t, v.ReadInConfig())

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}
