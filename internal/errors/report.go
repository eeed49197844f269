package errors

import (
	"encoding/json"
	"errors"

	"github.com/sunholo/naab/internal/ast"
)

// Fix is an optional suggested remediation attached to a Report, e.g. a
// "did you mean 'count'?" suggestion.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is naab's canonical structured error type. Every error builder in
// the parser, module loader, evaluator, executors, and marshaller returns
// one, which can be wrapped as a Go error via WrapReport.
type Report struct {
	Schema  string         `json:"schema"` // always "naab.error/v1"
	Code    string         `json:"code"`   // a Kind value, e.g. "E_UNDEFINED"
	Phase   string         `json:"phase"`  // "parse", "module", "eval", "executor", "marshal", "cache"
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// ReportError wraps a *Report as a Go error so it survives errors.As
// unwrapping through ordinary Go error-handling code.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps r as a Go error. Call sites return errors.WrapReport(r)
// to preserve structure through normal error propagation.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the Report as JSON, indented unless compact is true.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New builds a Report for the given kind/phase/message.
func New(kind Kind, phase, message string) *Report {
	return &Report{
		Schema:  "naab.error/v1",
		Code:    string(kind),
		Phase:   phase,
		Message: message,
		Data:    map[string]any{},
	}
}

// NewGeneric wraps an arbitrary Go error as a Report, used at boundaries
// (filesystem, subprocess, compiler) where the underlying failure has no
// naab-specific Kind of its own.
func NewGeneric(phase string, err error) *Report {
	return &Report{
		Schema:  "naab.error/v1",
		Code:    string(EIO),
		Phase:   phase,
		Message: err.Error(),
		Data:    map[string]any{},
	}
}
