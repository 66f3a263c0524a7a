package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/remix2go/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		objectsNode = ""
		docsReadme = ""
		docsSection = "## Nodes"
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseInputs(t *testing.T) {
	inputs, err := parseInputs([]string{
		`context={"address":"127.0.0.1","port":8011}`,
		"layer_types=workfile",
		"layer_count=2",
		"sublayers=false",
		"empty=",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"context":     map[string]interface{}{"address": "127.0.0.1", "port": float64(8011)},
		"layer_types": "workfile",
		"layer_count": float64(2),
		"sublayers":   false,
		"empty":       "",
	}, inputs)

	_, err = parseInputs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseInputs([]string{"=x"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger, err = newLogger(config.LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))

	path := filepath.Join(t.TempDir(), "remixnodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: JSON\n"), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	_, err = newLogger(cfg.Log)
	require.NoError(t, err)

	_, err = newLogger(config.LogConfig{Format: "xml"})
	assert.Error(t, err)
	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestObjectsCommand(t *testing.T) {
	out, err := execute(t, "objects", "--node", "RTXRemixStartContext")
	require.NoError(t, err)

	var objects map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &objects))
	assert.Contains(t, objects, "RTXRemixStartContext")
	assert.Len(t, objects, 1)

	_, err = execute(t, "objects", "--node", "Nope")
	assert.Error(t, err)
}

func TestDocsCommand(t *testing.T) {
	readme := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# Nodes pack\n\n## Nodes\n\nold\n\n## License\n\nMIT\n"), 0o644))

	_, err := execute(t, "docs", "--readme", readme)
	require.NoError(t, err)

	doc, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "old")
	assert.Contains(t, string(doc), "**RTX Remix Get Layers**")
	assert.Contains(t, string(doc), "## License")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
