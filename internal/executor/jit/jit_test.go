package jit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/value"
)

func TestExecuteDefinitionsSurviveIntoLaterCallFunction(t *testing.T) {
	e := New(time.Second)
	require.NoError(t, e.Execute(`function add(a, b) { return a + b; }`))

	result, err := e.CallFunction("add", []value.Value{value.Int{V: 2}, value.Int{V: 3}})
	require.NoError(t, err)
	require.Equal(t, value.Int{V: 5}, result)
}

func TestExecuteWithReturnEvaluatesExpression(t *testing.T) {
	e := New(time.Second)
	result, err := e.ExecuteWithReturn(`1 + 2`)
	require.NoError(t, err)
	require.Equal(t, value.Int{V: 3}, result)
}

func TestExecuteWithReturnFallsBackToStatementForm(t *testing.T) {
	e := New(time.Second)
	result, err := e.ExecuteWithReturn(`var __naab_result__ = 41 + 1;`)
	require.NoError(t, err)
	require.Equal(t, value.Int{V: 42}, result)
}

func TestBindExposesNaabValuesAsNativeJS(t *testing.T) {
	e := New(time.Second)
	require.NoError(t, e.Bind("name", value.String{V: "ada"}))
	result, err := e.ExecuteWithReturn(`"hello " + name`)
	require.NoError(t, err)
	require.Equal(t, value.String{V: "hello ada"}, result)
}

func TestConsoleLogWritesToCapturedOutputNotStdout(t *testing.T) {
	e := New(time.Second)
	require.NoError(t, e.Execute(`console.log("one", "two")`))
	require.Equal(t, "one two\n", e.DrainCapturedOutput())
	require.Empty(t, e.DrainCapturedOutput())
}

func TestCallFunctionErrorsOnNonFunctionName(t *testing.T) {
	e := New(time.Second)
	require.NoError(t, e.Execute(`var notAFunction = 5;`))
	_, err := e.CallFunction("notAFunction", nil)
	require.Error(t, err)
}

func TestToNativeRoundTripsListsDictsAndStructs(t *testing.T) {
	e := New(time.Second)
	def := value.NewStructDef("Point", []string{"x", "y"})
	st := &value.Struct{Def: def, Fields: []value.Value{value.Int{V: 1}, value.Int{V: 2}}}
	list := &value.List{Elements: []value.Value{value.Int{V: 1}, st}}
	d := value.NewDict()
	d.Set("p", list)

	require.NoError(t, e.Bind("data", d))
	result, err := e.ExecuteWithReturn(`data.p[1].__type`)
	require.NoError(t, err)
	require.Equal(t, value.String{V: "Point"}, result)
}

func TestNewDefaultsTimeoutWhenNonPositive(t *testing.T) {
	e := New(0)
	require.Equal(t, 10*time.Second, e.timeout)
}

func TestLanguageIDIsJS(t *testing.T) {
	require.Equal(t, "js", New(time.Second).LanguageID())
}
