package native

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/value"
)

// compileAndCall shells out to the system `go` toolchain via CallFunction/
// Execute/ExecuteWithReturn, and no test in this repository calls it; these
// tests cover the adapter's pure conversion and source-generation logic
// without invoking a compiler.

func TestNativeLiteralConvertsScalarValues(t *testing.T) {
	require.Nil(t, nativeLiteral(value.NullValue))
	require.Equal(t, true, nativeLiteral(value.Bool{V: true}))
	require.Equal(t, int64(7), nativeLiteral(value.Int{V: 7}))
	require.Equal(t, 2.5, nativeLiteral(value.Float{V: 2.5}))
	require.Equal(t, "hi", nativeLiteral(value.String{V: "hi"}))
}

func TestToValueConvertsNativeResultsBack(t *testing.T) {
	require.Equal(t, value.NullValue, toValue(nil))
	require.Equal(t, value.Bool{V: false}, toValue(false))
	require.Equal(t, value.Int{V: 3}, toValue(int64(3)))
	require.Equal(t, value.Int{V: 3}, toValue(3))
	require.Equal(t, value.Float{V: 1.5}, toValue(1.5))
	require.Equal(t, value.String{V: "x"}, toValue("x"))
}

func TestToValueFallsBackToStringForUnknownTypes(t *testing.T) {
	require.Equal(t, value.String{V: "[1 2]"}, toValue([]int{1, 2}))
}

func TestGenerateSourceWrapsBodyInEntrySymbol(t *testing.T) {
	e := &Executor{bound: map[string]interface{}{}}
	src := e.generateSource("return len(args), nil")

	require.Contains(t, src, "package main")
	require.Contains(t, src, "func "+EntrySymbol+"(args []interface{}) (interface{}, error) {")
	require.Contains(t, src, "return len(args), nil")
}

func TestBindRecordsLiteralByName(t *testing.T) {
	e := New(nil)
	require.NoError(t, e.Bind("limit", value.Int{V: 10}))
	require.Equal(t, int64(10), e.bound["limit"])
}

func TestDrainCapturedOutputIsAlwaysEmpty(t *testing.T) {
	e := New(nil)
	require.Equal(t, "", e.DrainCapturedOutput())
}

func TestLanguageIDIsNative(t *testing.T) {
	require.Equal(t, "native", New(nil).LanguageID())
}
