package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/logging"
)

func TestEvalLineReturnsExpressionResult(t *testing.T) {
	r := New(logging.Noop)
	var out bytes.Buffer
	r.evalLine("1 + 2", &out)
	require.Contains(t, out.String(), "3")
}

func TestEvalLineKeepsBindingsAcrossCalls(t *testing.T) {
	r := New(logging.Noop)
	var out bytes.Buffer
	r.evalLine("let x = 10", &out)
	out.Reset()
	r.evalLine("x + 1", &out)
	require.Contains(t, out.String(), "11")
}

func TestHandleCommandResetClearsBindings(t *testing.T) {
	r := New(logging.Noop)
	var out bytes.Buffer
	r.evalLine("let x = 10", &out)
	out.Reset()
	quit := r.handleCommand(":reset", &out)
	require.False(t, quit)

	out.Reset()
	r.evalLine("x", &out)
	require.Contains(t, strings.ToLower(out.String()), "error")
}

func TestHandleCommandQuitSignalsExit(t *testing.T) {
	r := New(logging.Noop)
	var out bytes.Buffer
	require.True(t, r.handleCommand(":quit", &out))
}
