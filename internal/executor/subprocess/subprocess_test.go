package subprocess

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/value"
)

func skipWithoutPython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available in this environment")
	}
}

func TestExecuteWithReturnEvaluatesExpression(t *testing.T) {
	skipWithoutPython(t)
	e := New(5 * time.Second)
	defer e.Close()

	v, err := e.ExecuteWithReturn("1 + 2")
	require.NoError(t, err)
	require.Equal(t, int64(3), v.(value.Int).V)
}

func TestBindThenReferenceInBody(t *testing.T) {
	skipWithoutPython(t)
	e := New(5 * time.Second)
	defer e.Close()

	require.NoError(t, e.Bind("x", value.Int{V: 41}))
	v, err := e.ExecuteWithReturn("x + 1")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.(value.Int).V)
}

func TestCallFunctionAfterLibraryModeDefine(t *testing.T) {
	skipWithoutPython(t)
	e := New(5 * time.Second)
	defer e.Close()

	require.NoError(t, e.Execute("def double(n):\n    return n * 2\n"))
	v, err := e.CallFunction("double", []value.Value{value.Int{V: 10}})
	require.NoError(t, err)
	require.Equal(t, int64(20), v.(value.Int).V)
}

func TestForeignExceptionSurfacesAsError(t *testing.T) {
	skipWithoutPython(t)
	e := New(5 * time.Second)
	defer e.Close()

	_, err := e.ExecuteWithReturn("1 / 0")
	require.Error(t, err)
}

func TestPrintedOutputIsCaptured(t *testing.T) {
	skipWithoutPython(t)
	e := New(5 * time.Second)
	defer e.Close()

	require.NoError(t, e.Execute("print('hello from python')"))
	require.Contains(t, e.DrainCapturedOutput(), "hello from python")
}
