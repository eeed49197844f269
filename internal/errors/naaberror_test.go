package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestWithinDistanceTwo(t *testing.T) {
	fix := Suggest("conut", []string{"count", "other"})
	require.NotNil(t, fix)
	require.Contains(t, fix.Suggestion, "count")
}

func TestSuggestNoCandidateWithinDistance(t *testing.T) {
	fix := Suggest("zzzzz", []string{"count", "other"})
	require.Nil(t, fix)
}

func TestNaabErrorFormatIncludesFrames(t *testing.T) {
	err := NewError(EUndefined, "eval", "undefined name 'conut'")
	err.WithFrames([]StackFrame{{Language: "naab", Function: "main", File: "a.naab", Line: 3}})
	out := err.Format(false)
	require.True(t, strings.Contains(out, "E_UNDEFINED"))
	require.True(t, strings.Contains(out, "main"))
}

func TestReportRoundTripsJSON(t *testing.T) {
	r := New(ETimeout, "executor", "call exceeded timeout")
	js, err := r.ToJSON(true)
	require.NoError(t, err)
	require.Contains(t, js, "E_TIMEOUT")

	wrapped := WrapReport(r)
	got, ok := AsReport(wrapped)
	require.True(t, ok)
	require.Equal(t, r.Code, got.Code)
}

func TestKindFatalClassification(t *testing.T) {
	require.True(t, EInputSize.Fatal())
	require.True(t, ECallDepth.Fatal())
	require.False(t, ETimeout.Fatal())
	require.True(t, ETimeout.Catchable(false))
	require.False(t, EInputSize.Catchable(false))
	require.True(t, EInputSize.Catchable(true))
}
