package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 128, cfg.GridSize)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, "petri-dish", string(cfg.Preset))
	assert.True(t, cfg.Features.TemperatureDiffusion)
	assert.True(t, cfg.Features.Predation)
	assert.True(t, cfg.Features.Replication)
}

func TestLoadOverrideFilePatchesOnlyNamedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid_size: 64\npreset: arena\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.GridSize)
	assert.Equal(t, "arena", string(cfg.Preset))
	// Untouched fields keep the embedded default.
	assert.Equal(t, 30, cfg.TickRate)
	assert.True(t, cfg.Features.Predation)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadFeatureTogglesCanBeDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("features:\n  predation: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Features.Predation)
	assert.True(t, cfg.Features.TemperatureDiffusion)
}
