// Package logging provides the small leveled logger naab's host and module
// loader use for non-error progress output (module load events, cache
// hits/misses, executor lifecycle), as distinct from internal/errors'
// structured Report diagnostics. Grounded on the teacher's
// internal/repl colour-coded rendering idiom via github.com/fatih/color,
// since no structured-logging library appears anywhere in the pack.
package logging

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger is naab's leveled progress-logging interface. Debug/Info/Warn
// never block program output (they write to stderr); Error messages still
// flow separately through internal/errors.Report for anything that affects
// the program's result.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// noop discards every call; it's the default when no -v flag is passed.
type noop struct{}

func (noop) Debug(string, ...interface{}) {}
func (noop) Info(string, ...interface{})  {}
func (noop) Warn(string, ...interface{})  {}
func (noop) Error(string, ...interface{}) {}

// Noop is the shared no-op Logger instance.
var Noop Logger = noop{}

// stderrLogger writes colour-coded leveled lines to w, matching the
// teacher's bold-for-severity, dim-for-detail repl rendering.
type stderrLogger struct {
	w       io.Writer
	debug   bool
	debugC  *color.Color
	infoC   *color.Color
	warnC   *color.Color
	errC    *color.Color
}

// NewStderr builds a Logger writing to os.Stderr. debug controls whether
// Debug-level calls are emitted at all (cmd/naab wires this to -v).
func NewStderr(debug bool) Logger {
	return &stderrLogger{
		w:      os.Stderr,
		debug:  debug,
		debugC: color.New(color.FgHiBlack),
		infoC:  color.New(color.FgCyan),
		warnC:  color.New(color.FgYellow, color.Bold),
		errC:   color.New(color.FgRed, color.Bold),
	}
}

func (l *stderrLogger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.debugC.Fprintf(l.w, "debug: "+format+"\n", args...)
}

func (l *stderrLogger) Info(format string, args ...interface{}) {
	l.infoC.Fprintf(l.w, "info: "+format+"\n", args...)
}

func (l *stderrLogger) Warn(format string, args ...interface{}) {
	l.warnC.Fprintf(l.w, "warn: "+format+"\n", args...)
}

func (l *stderrLogger) Error(format string, args ...interface{}) {
	l.errC.Fprintf(l.w, "error: "+format+"\n", args...)
}
