package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "remixnodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "127.0.0.1:8190", cfg.Server.Listen)
	assert.Equal(t, 8011, cfg.Remix.Port)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: 0.0.0.0:9000
remix:
  port: 8111
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.Equal(t, "127.0.0.1", cfg.Remix.Address, "unset fields keep their default")
	assert.Equal(t, 8111, cfg.Remix.Port)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadNormalizesLog(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: \" DEBUG\"\n  format: JSON\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	t.Setenv("REMIXNODES_LOG_LEVEL", "Warn")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REMIX_ADDRESS", "10.1.1.1")
	t.Setenv("REMIX_PORT", "9011")

	cfg, err := Load(writeConfig(t, "remix:\n  address: 10.0.0.1\n"))
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", cfg.Remix.Address)
	assert.Equal(t, 9011, cfg.Remix.Port)

	t.Setenv("REMIX_PORT", "nope")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "remix:\n  port: 70000\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log:\n  level: loud\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log:\n  format: xml\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "remix: [1, 2]\n"))
	assert.Error(t, err)
}
