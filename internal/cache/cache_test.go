package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileOrFetchBuildsOnceThenReuses(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)

	calls := 0
	build := func(srcPath, outPath string) error {
		calls++
		return os.WriteFile(outPath, []byte("artifact"), 0o644)
	}

	p1, err := c.CompileOrFetch("native", "package main", build)
	require.NoError(t, err)
	p2, err := c.CompileOrFetch("native", "package main", build)
	require.NoError(t, err)

	require.Equal(t, p1, p2)
	require.Equal(t, 1, calls)
}

func TestCompileOrFetchDistinctSourceMisses(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)

	build := func(srcPath, outPath string) error { return os.WriteFile(outPath, []byte("x"), 0o644) }

	p1, err := c.CompileOrFetch("native", "a", build)
	require.NoError(t, err)
	p2, err := c.CompileOrFetch("native", "b", build)
	require.NoError(t, err)
	require.NotEqual(t, p1, p2)
}

func TestCompileOrFetchPropagatesBuildError(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)

	_, err = c.CompileOrFetch("native", "bad", func(srcPath, outPath string) error {
		return os.ErrInvalid
	})
	require.Error(t, err)
}

func TestEvictionRemovesLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 10)
	require.NoError(t, err)

	build := func(srcPath, outPath string) error { return os.WriteFile(outPath, []byte("0123456789"), 0o644) }

	p1, err := c.CompileOrFetch("native", "first", build)
	require.NoError(t, err)
	_, err = c.CompileOrFetch("native", "second", build)
	require.NoError(t, err)

	_, statErr := os.Stat(p1)
	require.True(t, os.IsNotExist(statErr))
}

func TestIndexSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)

	build := func(srcPath, outPath string) error { return os.WriteFile(outPath, []byte("x"), 0o644) }
	p1, err := c.CompileOrFetch("native", "persisted", build)
	require.NoError(t, err)

	c2, err := New(dir, 0)
	require.NoError(t, err)
	calls := 0
	p2, err := c2.CompileOrFetch("native", "persisted", func(srcPath, outPath string) error {
		calls++
		return build(srcPath, outPath)
	})
	require.NoError(t, err)
	require.Equal(t, p1, p2)
	require.Equal(t, 0, calls)
	require.FileExists(t, filepath.Join(dir, "index.json"))
}
