package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultWhenNoRcFileFound(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFindsRcFileWalkingUpward(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(child, 0755))

	rc := `
module_paths:
  - ../vendor/naab_modules
aliases:
  geo: ./geometry.naab
executors:
  python:
    timeout_ms: 5000
cache:
  root: /tmp/naab-cache
  max_bytes: 104857600
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(rc), 0644))

	cfg, err := Load(child)
	require.NoError(t, err)
	require.Equal(t, []string{"../vendor/naab_modules"}, cfg.ModulePaths)
	require.Equal(t, "./geometry.naab", cfg.Aliases["geo"])
	require.Equal(t, 5000, cfg.Executors["python"].TimeoutMS)
	require.Equal(t, "/tmp/naab-cache", cfg.Cache.Root)
	require.EqualValues(t, 104857600, cfg.Cache.MaxBytes)
}

func TestLoadPrefersNearestRcFile(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "nested")
	require.NoError(t, os.MkdirAll(child, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("aliases:\n  which: far\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(child, FileName), []byte("aliases:\n  which: near\n"), 0644))

	cfg, err := Load(child)
	require.NoError(t, err)
	require.Equal(t, "near", cfg.Aliases["which"])
}

func TestDefaultHasEmptyNonNilMaps(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg.Aliases)
	require.NotNil(t, cfg.Executors)
	require.Empty(t, cfg.ModulePaths)
}
