package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Equal(t, 300*time.Millisecond, cfg.GetDebounce())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livecad.yaml")
	data := `recipe: bolt.go
preset: M8x1.25
parameters:
  length: 25
offset: -0.1
output:
  format: ascii
watch:
  debounce: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "bolt.go", cfg.Recipe)
	require.Equal(t, "M8x1.25", cfg.Preset)
	require.Equal(t, map[string]float64{"length": 25}, cfg.Parameters)
	require.Equal(t, -0.1, cfg.Offset)
	require.Equal(t, "ascii", cfg.Output.Format)
	require.Equal(t, "part.stl", cfg.Output.Path, "unset fields keep their default")
	require.Equal(t, 800, cfg.Preview.Width)
	require.Equal(t, time.Second, cfg.GetDebounce())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LIVECAD_PRESET", "M6x1")
	t.Setenv("LIVECAD_OFFSET", "0.25")
	t.Setenv("LIVECAD_LOG_LEVEL", "debug")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "M6x1", cfg.Preset)
	require.Equal(t, 0.25, cfg.Offset)
	require.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("LIVECAD_WELD", "tiny")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "LIVECAD_WELD")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livecad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("offset: [1, 2"), 0644))
	_, err := Load(path)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "livecad.yaml")
	cfg := DefaultConfig()
	cfg.Parameters = map[string]float64{"pitch": 1.25}
	cfg.Material = "pla"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}
