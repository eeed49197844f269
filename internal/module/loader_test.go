package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/executor"
)

func writeModule(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func newTestLoader() *Loader {
	return NewLoader(NewResolver(), executor.NewRegistry())
}

func TestLoaderResolvesExportedFunction(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "math.naab", `
export func double(x) {
	return x * 2
}
`)
	entry := writeModule(t, dir, "main.naab", `
import {double} from "./math"
main {
	let y = double(21)
}
`)

	l := newTestLoader()
	result, err := l.LoadFile(entry)
	require.Nil(t, err)
	require.NotNil(t, result)
}

func TestLoaderNonExportedImportBindsNull(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "math.naab", `
func hidden(x) {
	return x
}
`)
	entry := writeModule(t, dir, "main.naab", `
import {hidden} from "./math"
main {
	let y = hidden(1)
}
`)

	l := newTestLoader()
	_, err := l.LoadFile(entry)
	// hidden isn't exported, so the import binds null in place of it;
	// calling null as a function is what actually fails.
	require.NotNil(t, err)
	require.Equal(t, "E_NOT_CALLABLE", string(err.Kind()))
}

func TestLoaderDetectsCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.naab", `
import {b} from "./b"
export func a() { return 1 }
`)
	writeModule(t, dir, "b.naab", `
import {a} from "./a"
export func b() { return 2 }
`)
	entry := writeModule(t, dir, "main.naab", `
import {a} from "./a"
main {
	let x = a()
}
`)

	l := newTestLoader()
	_, err := l.LoadFile(entry)
	require.NotNil(t, err)
	require.Equal(t, "E_CIRCULAR_IMPORT", string(err.Kind()))
}

func TestLoaderCachesReadyModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "shared.naab", `
export func id(x) { return x }
`)
	writeModule(t, dir, "a.naab", `
import {id} from "./shared"
export func a(x) { return id(x) }
`)
	entry := writeModule(t, dir, "main.naab", `
import {id} from "./shared"
import {a} from "./a"
main {
	let x = a(id(5))
}
`)

	l := newTestLoader()
	_, err := l.LoadFile(entry)
	require.Nil(t, err)

	// The shared module was loaded twice (once directly, once via a.naab)
	// but only evaluated once; its cache entry must be Ready, not stuck
	// mid-flight.
	for path, e := range l.cache {
		require.Equalf(t, stateReady, e.state, "module %s did not settle into Ready", path)
	}
}

func TestLoaderExportsStructType(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "geo.naab", `
export struct Point {
	x: int,
	y: int
}
`)
	entry := writeModule(t, dir, "main.naab", `
import {Point} from "./geo"
main {
	let p = Point{x: 1, y: 2}
}
`)

	l := newTestLoader()
	result, err := l.LoadFile(entry)
	require.Nil(t, err)
	require.NotNil(t, result)
}

func TestExportsOfSkipsUnexported(t *testing.T) {
	dir := t.TempDir()
	path := writeModule(t, dir, "mixed.naab", `
func hidden(x) { return x }
export func shown(x) { return x }
`)
	prog, ev, _, err := newTestLoader().parseAndRun(path)
	require.Nil(t, err)
	d := exportsOf(prog, ev)
	require.Equal(t, []string{"shown"}, d.Keys())
}
