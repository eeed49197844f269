package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/testutil"
)

// Grounded on the teacher's internal/schema/golden_test.go: an inline
// expected-JSON literal per case rather than an on-disk golden file, since
// a Report's JSON has no environment-dependent fields to drift across runs.
func TestReportJSONMatchesGoldenShape(t *testing.T) {
	tests := []struct {
		name     string
		rep      *Report
		wantJSON string
	}{
		{
			name: "undefined_name_with_fix",
			rep: &Report{
				Schema:  "naab.error/v1",
				Code:    "E_UNDEFINED",
				Phase:   "eval",
				Message: "undefined name 'conut'",
				Fix:     &Fix{Suggestion: "did you mean 'count'?", Confidence: 0.8333333333333334},
			},
			wantJSON: `{
  "schema": "naab.error/v1",
  "code": "E_UNDEFINED",
  "phase": "eval",
  "message": "undefined name 'conut'",
  "fix": {
    "suggestion": "did you mean 'count'?",
    "confidence": 0.8333333333333334
  }
}`,
		},
		{
			name: "timeout_no_fix",
			rep: &Report{
				Schema:  "naab.error/v1",
				Code:    "E_TIMEOUT",
				Phase:   "executor",
				Message: "call exceeded timeout",
			},
			wantJSON: `{
  "schema": "naab.error/v1",
  "code": "E_TIMEOUT",
  "phase": "executor",
  "message": "call exceeded timeout"
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rep.ToJSON(false)
			require.NoError(t, err)

			var want, actual interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.wantJSON), &want))
			require.NoError(t, json.Unmarshal([]byte(got), &actual))

			diff := testutil.DiffJSON(want, actual)
			require.Equal(t, want, actual, "unexpected divergence from golden shape:\n%s", diff)
		})
	}
}
