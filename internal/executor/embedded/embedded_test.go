package embedded

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/value"
)

func TestExecuteDefinitionsSurviveIntoLaterCallFunction(t *testing.T) {
	e := New()
	require.NoError(t, e.Execute(`func add(a, b int) int { return a + b }`))

	result, err := e.CallFunction("add", []value.Value{value.Int{V: 2}, value.Int{V: 3}})
	require.NoError(t, err)
	require.Equal(t, value.Int{V: 5}, result)
}

func TestExecuteWithReturnEvaluatesExpression(t *testing.T) {
	e := New()
	result, err := e.ExecuteWithReturn(`1 + 2`)
	require.NoError(t, err)
	require.Equal(t, value.Int{V: 3}, result)
}

func TestStdoutIsCapturedNotWrittenToRealStdout(t *testing.T) {
	e := New()
	require.NoError(t, e.Execute(`import "fmt"`))
	require.NoError(t, e.Execute(`fmt.Print("hello from go")`))
	require.Equal(t, "hello from go", e.DrainCapturedOutput())
	require.Empty(t, e.DrainCapturedOutput())
}

func TestCallFunctionErrorsWhenNotDefined(t *testing.T) {
	e := New()
	_, err := e.CallFunction("missing", nil)
	require.Error(t, err)
}

func TestCallFunctionErrorsOnNonFunctionName(t *testing.T) {
	e := New()
	require.NoError(t, e.Execute(`var notAFunction = 5`))
	_, err := e.CallFunction("notAFunction", nil)
	require.Error(t, err)
}

func TestBindExposesNaabValueToInterpreter(t *testing.T) {
	e := New()
	require.NoError(t, e.Bind("greeting", value.String{V: "hi"}))
	result, err := e.ExecuteWithReturn(`greeting`)
	require.NoError(t, err)
	require.Equal(t, value.String{V: "hi"}, result)
}

func TestFromNativeConvertsSliceToList(t *testing.T) {
	e := New()
	result, err := e.ExecuteWithReturn(`[]int{1, 2, 3}`)
	require.NoError(t, err)
	lst, ok := result.(*value.List)
	require.True(t, ok)
	require.Equal(t, []value.Value{value.Int{V: 1}, value.Int{V: 2}, value.Int{V: 3}}, lst.Elements)
}

func TestLanguageIDIsGo(t *testing.T) {
	require.Equal(t, "go", New().LanguageID())
}

func TestInitializedAfterNew(t *testing.T) {
	require.True(t, New().Initialized())
}
