package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Verbosity)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, 100, cfg.Server.MaxOpenDocuments)
	assert.Equal(t, 64, cfg.Server.InboundBuffer)
	assert.Equal(t, 64, cfg.Server.OutboundBuffer)
	assert.Equal(t, 200, cfg.Analyzer.MaxDiagnostics)
	assert.Equal(t, 50, cfg.Analyzer.MaxCompletions)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
verbosity = 2
log_json = true

[server]
max_open_documents = 10
inbound_buffer = 8

[analyzer]
max_diagnostics = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Verbosity)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, 10, cfg.Server.MaxOpenDocuments)
	assert.Equal(t, 8, cfg.Server.InboundBuffer)
	// Unset keys fall back to defaults
	assert.Equal(t, 64, cfg.Server.OutboundBuffer)
	assert.Equal(t, 5, cfg.Analyzer.MaxDiagnostics)
	assert.Equal(t, 50, cfg.Analyzer.MaxCompletions)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err, "an explicit config path that does not exist is an error")
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("QUILL_LS_SERVER_MAX_OPEN_DOCUMENTS", "7")
	t.Setenv("QUILL_LS_VERBOSITY", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Server.MaxOpenDocuments)
	assert.Equal(t, 3, cfg.Verbosity)
}
