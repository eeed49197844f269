package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, debug bool) *stderrLogger {
	return &stderrLogger{
		w:      buf,
		debug:  debug,
		debugC: color.New(color.FgHiBlack),
		infoC:  color.New(color.FgCyan),
		warnC:  color.New(color.FgYellow, color.Bold),
		errC:   color.New(color.FgRed, color.Bold),
	}
}

func TestNoopLoggerDiscardsEverything(t *testing.T) {
	require.NotPanics(t, func() {
		Noop.Debug("x %d", 1)
		Noop.Info("x")
		Noop.Warn("x")
		Noop.Error("x")
	})
}

func TestStderrLoggerSuppressesDebugWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, false)
	l.Debug("loading module %s", "foo")
	require.Empty(t, buf.String())
}

func TestStderrLoggerEmitsDebugWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, true)
	l.Debug("loading module %s", "foo")
	require.Contains(t, buf.String(), "debug: loading module foo")
}

func TestStderrLoggerLevelsAlwaysEmitRegardlessOfDebugFlag(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, false)
	l.Info("cache hit for %s", "bar")
	l.Warn("retrying %s", "baz")
	l.Error("failed: %s", "boom")

	out := buf.String()
	require.Contains(t, out, "info: cache hit for bar")
	require.Contains(t, out, "warn: retrying baz")
	require.Contains(t, out, "error: failed: boom")
}

func TestNewStderrDefaultsToOsStderr(t *testing.T) {
	l := NewStderr(true).(*stderrLogger)
	require.Equal(t, os.Stderr, l.w)
	require.True(t, l.debug)
}
