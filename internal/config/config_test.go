package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/telemy/internal/config"
	"codeberg.org/mutker/telemy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("HOME", tempDir)
	t.Setenv("TELEMY_CONFIG", "")
	return tempDir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	configPath := filepath.Join(dir, "telemy.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	tempDir := isolate(t)

	configPath := writeConfig(t, tempDir, `
interval = "2s"
log_level = "debug"

[obs]
host = "10.0.0.5"
port = 4460
password = "hunter2"
auto_detect = false

[latency]
target = "8.8.8.8:53"

[exporter]
enabled = true
interval = "30s"
push_url = "http://push.local:9091"

[history]
capacity = 60
`)
	t.Setenv("TELEMY_CONFIG", configPath)

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "10.0.0.5", cfg.OBS.Host)
	assert.Equal(t, 4460, cfg.OBS.Port)
	assert.Equal(t, "hunter2", cfg.OBS.Password)
	assert.False(t, cfg.OBS.AutoDetect)
	assert.Equal(t, "8.8.8.8:53", cfg.Latency.Target)
	assert.True(t, cfg.Exporter.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Exporter.Interval)
	assert.Equal(t, "http://push.local:9091", cfg.Exporter.PushURL)
	assert.Equal(t, 60, cfg.History.Capacity)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, string(config.DefaultLogLevel), cfg.LogLevel)
	assert.Equal(t, "127.0.0.1", cfg.OBS.Host)
	assert.Equal(t, 4455, cfg.OBS.Port)
	assert.True(t, cfg.OBS.AutoDetect)
	assert.Equal(t, "obs", cfg.OBS.ProcessName)
	assert.Equal(t, 2*time.Second, cfg.OBS.RetryCooldown)
	assert.Equal(t, 250*time.Millisecond, cfg.Latency.Timeout)
	assert.True(t, cfg.Dashboard.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Dashboard.PushInterval)
	assert.Equal(t, []string{"*"}, cfg.Dashboard.AllowedOrigins)
	assert.False(t, cfg.Exporter.Enabled)
	assert.Equal(t, 120, cfg.History.Capacity)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := isolate(t)
	configPath := writeConfig(t, tempDir, `
This is not a valid TOML file
`)

	_, err := config.Load(config.WithArgs(nil), config.WithConfigFile(configPath))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := isolate(t)
	configPath := writeConfig(t, tempDir, `
log_level = "invalid"
`)

	_, err := config.Load(config.WithArgs(nil), config.WithConfigFile(configPath))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestInvalidInterval(t *testing.T) {
	isolate(t)

	_, err := config.Load(config.WithArgs([]string{"--interval", "0s"}))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestFlagsOverrideFile(t *testing.T) {
	tempDir := isolate(t)
	configPath := writeConfig(t, tempDir, `
log_level = "error"

[obs]
host = "10.0.0.5"
`)

	cfg, err := config.Load(config.WithArgs([]string{
		"--config", configPath,
		"--log-level", "debug",
		"--obs-port", "4999",
	}))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
	assert.Equal(t, 4999, cfg.OBS.Port)
	assert.Equal(t, "10.0.0.5", cfg.OBS.Host)
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TELEMY_OBS_PASSWORD", "from-env")

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OBS.Password)
}

func TestParseLogLevel(t *testing.T) {
	level, ok := config.ParseLogLevel(" WARN ")
	assert.True(t, ok)
	assert.Equal(t, config.LogLevelWarning, level)

	_, ok = config.ParseLogLevel("verbose")
	assert.False(t, ok)
}

func TestLogLevelNormalized(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(config.WithArgs([]string{"--log-level", "Warn"}))
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.LogLevel)
}
