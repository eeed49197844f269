package eval

import (
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/value"
)

// Environment is a lexically-scoped name→value frame with a parent link
// (spec §3/§4.4). Define writes to the innermost frame; Get/Assign walk
// parent links to the root.
type Environment struct {
	names  []string // insertion order, for NamesInScope and suggestions
	values map[string]value.Value
	parent *Environment
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]value.Value)}
}

// Child creates a new environment parented to e.
func (e *Environment) Child() *Environment {
	return &Environment{values: make(map[string]value.Value), parent: e}
}

// Define binds name in the innermost (this) frame. Redefining an existing
// name in the same scope shadows it, per spec §4.10 VarDeclStmt semantics.
func (e *Environment) Define(name string, v value.Value) {
	if _, exists := e.values[name]; !exists {
		e.names = append(e.names, name)
	}
	e.values[name] = v
}

// Get walks from e to the root looking for name. On failure it returns an
// *errors.NaabError of kind E_UNDEFINED carrying a "did you mean?"
// suggestion computed by Levenshtein distance <= 2 over names reachable
// from the innermost frame outward (spec §4.4).
func (e *Environment) Get(name string) (value.Value, *nerrors.NaabError) {
	for frame := e; frame != nil; frame = frame.parent {
		if v, ok := frame.values[name]; ok {
			return v, nil
		}
	}
	err := nerrors.NewError(nerrors.EUndefined, "eval", "undefined name '"+name+"'")
	if fix := nerrors.Suggest(name, e.NamesInScope()); fix != nil {
		err.Rep.Fix = fix
	}
	return nil, err
}

// Assign walks from e to the root looking for an existing binding to
// update. It fails with E_UNDEFINED if none is found; unlike Define, it
// never creates a new binding.
func (e *Environment) Assign(name string, v value.Value) *nerrors.NaabError {
	for frame := e; frame != nil; frame = frame.parent {
		if _, ok := frame.values[name]; ok {
			frame.values[name] = v
			return nil
		}
	}
	err := nerrors.NewError(nerrors.EUndefined, "eval", "undefined name '"+name+"'")
	if fix := nerrors.Suggest(name, e.NamesInScope()); fix != nil {
		err.Rep.Fix = fix
	}
	return err
}

// NamesInScope returns every name reachable from e, innermost frame first,
// used by the did-you-mean suggestion machinery.
func (e *Environment) NamesInScope() []string {
	var out []string
	for frame := e; frame != nil; frame = frame.parent {
		out = append(out, frame.names...)
	}
	return out
}
