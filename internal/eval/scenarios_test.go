package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/executor"
	"github.com/sunholo/naab/internal/lexer"
	"github.com/sunholo/naab/internal/parser"
	"github.com/sunholo/naab/internal/value"
)

func run(t *testing.T, src string) (value.Value, *Evaluator) {
	t.Helper()
	l := lexer.New(string(lexer.Normalize([]byte(src))), "<test>")
	p := parser.New(l, "<test>")
	prog, errs := p.Parse()
	require.Empty(t, errs, "unexpected parse errors: %v", errs)
	e := New(executor.NewRegistry(), "<test>")
	result, err := e.RunProgram(prog)
	require.Nil(t, err, "unexpected evaluation error: %v", err)
	return result, e
}

// S1 (closures): a closure returned from a function keeps mutating the same
// captured binding across calls, not a fresh copy per call.
func TestScenarioClosureCapturesSharedBinding(t *testing.T) {
	result, _ := run(t, `
		func make() {
			let x = 0
			return fn() => x = x + 1
		}
		main {
			let c = make()
			c()
			c()
		}
	`)
	require.Equal(t, value.Int{V: 2}, result)
}

// S2 (exception propagation): a caught thrown value is usable as a normal
// value in the catch body.
func TestScenarioCatchBindsThrownValue(t *testing.T) {
	result, _ := run(t, `
		main {
			try {
				throw "oops"
			} catch (e) {
				e + "!"
			}
		}
	`)
	require.Equal(t, value.String{V: "oops!"}, result)
}

// S7 (undefined-name suggestion): referencing a misspelled name raises
// E_UNDEFINED whose formatted diagnostic proposes the nearby binding.
func TestScenarioUndefinedNameSuggestsClosestMatch(t *testing.T) {
	l := lexer.New("main { let count = 1 conut + 1 }", "<test>")
	p := parser.New(l, "<test>")
	prog, errs := p.Parse()
	require.Empty(t, errs)

	e := New(executor.NewRegistry(), "<test>")
	_, err := e.RunProgram(prog)
	require.NotNil(t, err)
	require.Equal(t, "E_UNDEFINED", string(err.Kind()))
	require.Contains(t, err.Format(false), "did you mean 'count'?")
}

// §8 property 2: defining a name in a child scope shadows the parent's
// binding until the child scope is discarded.
func TestEnvironmentShadowingRestoresOuterBinding(t *testing.T) {
	root := NewEnvironment()
	root.Define("n", value.Int{V: 1})

	child := root.Child()
	child.Define("n", value.Int{V: 2})
	v, err := child.Get("n")
	require.Nil(t, err)
	require.Equal(t, value.Int{V: 2}, v)

	v, err = root.Get("n")
	require.Nil(t, err)
	require.Equal(t, value.Int{V: 1}, v)
}

// §8 property 10: lists are reference values; mutating through one binding
// is visible through any other binding of the same list.
func TestListMutationIsVisibleThroughAliasedBinding(t *testing.T) {
	result, _ := run(t, `
		main {
			let a = [1, 2, 3]
			let b = a
			b[0] = 99
			a[0]
		}
	`)
	require.Equal(t, value.Int{V: 99}, result)
}

// §8 property 9: after any program run, successful or throwing, the
// evaluator's internal call-stack bookkeeping returns to empty.
func TestStackFrameBalanceAfterThrowingProgram(t *testing.T) {
	l := lexer.New(`
		func boom() { throw "bang" }
		main { boom() }
	`, "<test>")
	p := parser.New(l, "<test>")
	prog, errs := p.Parse()
	require.Empty(t, errs)

	e := New(executor.NewRegistry(), "<test>")
	_, err := e.RunProgram(prog)
	require.NotNil(t, err)
	require.Empty(t, e.stack)
}
