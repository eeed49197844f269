package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// StackFrame is one entry of the cross-language call trace (spec §3/§4.11).
// Foreign executors append their own frames when they re-enter the
// evaluator or report an error upward.
type StackFrame struct {
	Language string // "naab" for host frames, an executor's language-id otherwise
	Function string
	File     string
	Line     int
	Locals   map[string]string // optional snapshot, display strings only
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s (%s:%s:%d)", f.Function, f.Language, f.File, f.Line)
}

// Thrown is the interface a runtime Value must implement to be carried as
// the payload of a thrown exception. Defined here (rather than importing
// internal/eval's Value) to avoid an errors↔eval import cycle; internal/eval
// implements it on its Value type and type-asserts it back out of NaabError.
type Thrown interface {
	String() string
}

// NaabError is the evaluator's runtime error/exception type: a structured
// Report plus the optional thrown Value and the stack trace captured at
// the throw site or the point of failure.
type NaabError struct {
	Rep    *Report
	Value  Thrown // non-nil only when raised via ThrowStmt
	Frames []StackFrame
}

func (e *NaabError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Message
}

// Kind returns the error's Kind, or "" if Rep is nil.
func (e *NaabError) Kind() Kind {
	if e.Rep == nil {
		return ""
	}
	return Kind(e.Rep.Code)
}

// NewError constructs a NaabError with no stack trace attached yet; callers push
// frames as the error unwinds (see internal/eval's scoped push/pop).
func NewError(kind Kind, phase, message string) *NaabError {
	return &NaabError{Rep: New(kind, phase, message)}
}

// WithFrames sets e.Frames to frames. e is mutated in place and returned
// for chaining, matching the teacher's builder style.
func (e *NaabError) WithFrames(frames []StackFrame) *NaabError {
	e.Frames = frames
	return e
}

// langColors is the fixed per-language colour map required by spec §4.11.
var langColors = map[string]*color.Color{
	"naab":   color.New(color.FgCyan),
	"go":     color.New(color.FgBlue),
	"js":     color.New(color.FgYellow),
	"native": color.New(color.FgGreen),
	"python": color.New(color.FgMagenta),
}

func colorFor(lang string) *color.Color {
	if c, ok := langColors[lang]; ok {
		return c
	}
	return color.New(color.FgWhite)
}

// Format renders e as the user-visible diagnostic text from spec §7:
//
//	error[<kind>]: <message>
//	  at <function> (<language>:<file>:<line>)
//	  ...
//
// When colour is true, the kind is bold and each frame's language tag uses
// its fixed colour from langColors.
func (e *NaabError) Format(colorize bool) string {
	var b strings.Builder
	kind := "E_UNKNOWN"
	msg := e.Error()
	if e.Rep != nil {
		kind = e.Rep.Code
	}
	if colorize {
		b.WriteString(color.New(color.Bold).Sprintf("error[%s]", kind))
	} else {
		fmt.Fprintf(&b, "error[%s]", kind)
	}
	fmt.Fprintf(&b, ": %s\n", msg)
	for _, f := range e.Frames {
		line := fmt.Sprintf("  at %s (%s:%s:%d)", f.Function, f.Language, f.File, f.Line)
		if colorize {
			line = fmt.Sprintf("  at %s (%s)", f.Function, colorFor(f.Language).Sprintf("%s:%s:%d", f.Language, f.File, f.Line))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if e.Rep != nil && e.Rep.Fix != nil && e.Rep.Fix.Suggestion != "" {
		fmt.Fprintf(&b, "  %s\n", e.Rep.Fix.Suggestion)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Suggest computes a "did you mean '<name>'?" Fix by Levenshtein distance
// <= 2 against candidates, used by E_UNDEFINED (spec §4.4) and
// E_STRUCT_FIELD (spec §7/SPEC_FULL §12) alike. Returns nil if nothing
// within distance 2 is found.
func Suggest(name string, candidates []string) *Fix {
	best := ""
	bestDist := 3 // one past the spec's distance-2 cutoff
	for _, c := range candidates {
		d := levenshtein(name, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best == "" {
		return nil
	}
	return &Fix{
		Suggestion: fmt.Sprintf("did you mean '%s'?", best),
		Confidence: 1.0 - float64(bestDist)/3.0,
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			min := prev[j] + 1
			if curr[j-1]+1 < min {
				min = curr[j-1] + 1
			}
			if prev[j-1]+cost < min {
				min = prev[j-1] + cost
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// SortedNames is a small helper the environment/struct-field suggestion
// machinery uses to produce deterministic candidate ordering for tests.
func SortedNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
