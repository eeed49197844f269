// Package value implements naab's runtime Value model (spec §3): the tagged
// sum of scalar and shared-mutable variants every evaluator, executor
// adapter, and marshaller operates on.
package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Value is the runtime universe. Every naab value implements this.
type Value interface {
	Type() string
	String() string
}

// Null is the trivial value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }

// NullValue is the single shared Null instance; Null carries no state so
// there is never a reason to allocate more than one.
var NullValue = Null{}

// Int is a 64-bit signed integer, per the spec §9(a) open-question decision.
type Int struct{ V int64 }

func (i Int) Type() string   { return "int" }
func (i Int) String() string { return strconv.FormatInt(i.V, 10) }

// Float is a 64-bit IEEE-754 float.
type Float struct{ V float64 }

func (f Float) Type() string   { return "float" }
func (f Float) String() string { return strconv.FormatFloat(f.V, 'g', -1, 64) }

// Bool is a boolean.
type Bool struct{ V bool }

func (b Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b.V {
		return "true"
	}
	return "false"
}

// String is immutable UTF-8 text.
type String struct{ V string }

func (s String) Type() string   { return "string" }
func (s String) String() string { return s.V }

// List is an ordered, shared-mutable sequence. It is always held by
// pointer so that two names bound to the "same" list observe each other's
// mutations (spec §3, §8 property 10): Go's pointer-identity semantics do
// the sharing, no refcounting scheme is needed at this layer.
type List struct {
	Elements []Value
}

func NewList(elems []Value) *List { return &List{Elements: elems} }

func (l *List) Type() string { return "list" }
func (l *List) String() string {
	return displayList(l, newVisitSet())
}

// Dict is an insertion-ordered string-keyed mapping, shared-mutable like
// List.
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Set inserts or updates key, preserving first-insertion order.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Delete removes key, if present, preserving the order of remaining keys.
func (d *Dict) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

func (d *Dict) Type() string { return "dict" }
func (d *Dict) String() string {
	return displayDict(d, newVisitSet())
}

// StructDef is the shared shape record for a declared struct: field names
// in declaration order plus an index for O(1) lookup (spec §3).
type StructDef struct {
	Name      string
	FieldName []string
	FieldIdx  map[string]int
}

func NewStructDef(name string, fields []string) *StructDef {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f] = i
	}
	return &StructDef{Name: name, FieldName: fields, FieldIdx: idx}
}

// StructDef implements Value so an exported struct/enum-variant type can
// travel through a module's export Dict alongside the functions and
// singletons that use it; internal/eval re-registers it under the
// importer's StructDefs map on bind (see eval.Evaluator.bindImport).
func (d *StructDef) Type() string   { return "struct_def" }
func (d *StructDef) String() string { return "<struct " + d.Name + ">" }

// Struct is an instance of a StructDef: a shared pointer to the def plus a
// parallel field-value vector indexed identically.
type Struct struct {
	Def    *StructDef
	Fields []Value
}

func (s *Struct) Type() string { return s.Def.Name }
func (s *Struct) String() string {
	return displayStruct(s, newVisitSet())
}

// Get returns the named field's value and whether the field exists.
func (s *Struct) Get(name string) (Value, bool) {
	idx, ok := s.Def.FieldIdx[name]
	if !ok {
		return nil, false
	}
	return s.Fields[idx], true
}

// Set writes the named field's value; the caller must have already
// validated the field exists (E_STRUCT_FIELD is an eval-layer concern).
func (s *Struct) Set(name string, v Value) bool {
	idx, ok := s.Def.FieldIdx[name]
	if !ok {
		return false
	}
	s.Fields[idx] = v
	return true
}

// Function closures are defined by internal/eval as a concrete type
// implementing Value directly (eval.Closure), rather than here: a closure
// needs to hold an *ast.FuncDecl/LambdaExpr body plus an *eval.Environment,
// and threading those types through this package would create an import
// cycle (internal/eval already imports internal/value for every other
// variant).

// ErrTimeout is the sentinel a foreign-call executor adapter wraps (with
// fmt.Errorf's %w) and returns when a call is aborted for running past its
// configured timeout, so the evaluator can tell a timeout apart from an
// ordinary foreign exception and raise E_TIMEOUT instead of E_FOREIGN
// (spec §4.10(c)/§4.12).
var ErrTimeout = errors.New("executor: call exceeded its timeout")

// Executor is the capability interface each foreign-language adapter
// implements (spec §4.6). Defined here, not in a separate package, so that
// Block can hold a reference to one without an import cycle: both
// internal/eval and internal/executor/* import internal/value, and
// internal/executor/* implement this interface against internal/value
// types directly.
type Executor interface {
	Initialized() bool
	LanguageID() string
	// Bind injects a host value as a named global in the foreign runtime,
	// before an inline-code body that references it runs (spec §6's
	// `<<lang [v1, v2] body>>` binding list).
	Bind(name string, v Value) error
	Execute(code string) error
	ExecuteWithReturn(code string) (Value, error)
	CallFunction(name string, args []Value) (Value, error)
	DrainCapturedOutput() string
	Close() error
}

// StructAware is implemented by executor adapters whose wire format can
// carry a tagged struct shape (spec §4.8): each time the evaluator resolves
// an executor for an inline-code expression it type-asserts the Executor
// against this interface and, if it satisfies it,
// hands over the current struct registry so a tagged object coming back
// from the foreign side reconstructs as a typed *Struct instead of
// degrading to a plain Dict.
type StructAware interface {
	SetStructDefs(defs map[string]*StructDef)
}

// Block is a handle to a loaded foreign artifact (spec §3). It owns its
// Executor unless Borrowed is true, in which case some other Block or the
// registry retains ownership and is responsible for closing it.
type Block struct {
	ID       string // e.g. "BLOCK-PY-0001", or "" for an inline-code hand-off
	Language string
	Source   string
	Exec     Executor
	Borrowed bool
}

func (b *Block) Type() string { return "block" }
func (b *Block) String() string {
	if b.ID != "" {
		return fmt.Sprintf("<block %s>", b.ID)
	}
	return fmt.Sprintf("<block %s inline>", b.Language)
}

// Close finalizes the block's executor unless it is borrowed.
func (b *Block) Close() error {
	if b.Borrowed || b.Exec == nil {
		return nil
	}
	return b.Exec.Close()
}

// Foreign is an opaque handle to an object living inside a foreign
// runtime. Its lifetime is bounded by Owner's lifetime (spec §3); Finalize
// is invoked when Owner is closed so outstanding handles never outlive
// their runtime.
type Foreign struct {
	Owner    Executor
	Language string
	Native   interface{} // adapter-specific representation (reflect.Value, goja.Value, ...)
	Finalize func()
}

func (f *Foreign) Type() string { return "foreign" }
func (f *Foreign) String() string {
	return fmt.Sprintf("<foreign %s>", f.Language)
}

// ---------------------------------------------------------------------------
// Operations shared across the evaluator, marshaller, and builtins.
// ---------------------------------------------------------------------------

// TypeOf returns the variant tag used for dispatch and error messages.
// Struct values report their declared struct name, matching spec §4.3's
// "returns the variant tag"; callers that need the generic "struct" tag
// should test `_, ok := v.(*Struct)` instead.
func TypeOf(v Value) string { return v.Type() }

// Truthy implements spec §4.3's falsy set: Null, Bool false, Int 0,
// Float 0.0, and empty strings/lists/dicts are falsy; everything else,
// including every Struct/Function/Block/Foreign, is truthy.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case Null:
		return false
	case Bool:
		return x.V
	case Int:
		return x.V != 0
	case Float:
		return x.V != 0
	case String:
		return x.V != ""
	case *List:
		return len(x.Elements) > 0
	case *Dict:
		return x.Len() > 0
	default:
		return true
	}
}

// Equal implements spec §4.3 equality: structural within a variant,
// Int/Float promote to float for cross-numeric comparison, everything
// else across variants is simply false (never a type error).
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Int:
		switch y := b.(type) {
		case Int:
			return x.V == y.V
		case Float:
			return float64(x.V) == y.V
		}
		return false
	case Float:
		switch y := b.(type) {
		case Int:
			return x.V == float64(y.V)
		case Float:
			return x.V == y.V
		}
		return false
	case Bool:
		y, ok := b.(Bool)
		return ok && x.V == y.V
	case String:
		y, ok := b.(String)
		return ok && x.V == y.V
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			xv, _ := x.Get(k)
			yv, ok := y.Get(k)
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case *Struct:
		y, ok := b.(*Struct)
		if !ok || x.Def != y.Def || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

type visitSet map[interface{}]bool

func newVisitSet() visitSet { return make(visitSet) }

// ToDisplayString renders v for diagnostics and `print`, detecting cycles
// per spec §4.3 rather than recursing forever on self-referential
// List/Dict/Struct values.
func ToDisplayString(v Value) string {
	switch x := v.(type) {
	case *List:
		return displayList(x, newVisitSet())
	case *Dict:
		return displayDict(x, newVisitSet())
	case *Struct:
		return displayStruct(x, newVisitSet())
	default:
		return v.String()
	}
}

func displayList(l *List, seen visitSet) string {
	if seen[l] {
		return "[...]"
	}
	seen[l] = true
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = displayChild(e, seen)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func displayDict(d *Dict, seen visitSet) string {
	if seen[d] {
		return "{...}"
	}
	seen[d] = true
	parts := make([]string, 0, d.Len())
	for _, k := range d.keys {
		v, _ := d.Get(k)
		parts = append(parts, fmt.Sprintf("%q: %s", k, displayChild(v, seen)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func displayStruct(s *Struct, seen visitSet) string {
	if seen[s] {
		return s.Def.Name + "{...}"
	}
	seen[s] = true
	parts := make([]string, len(s.Fields))
	for i, name := range s.Def.FieldName {
		parts[i] = fmt.Sprintf("%s: %s", name, displayChild(s.Fields[i], seen))
	}
	return s.Def.Name + "{" + strings.Join(parts, ", ") + "}"
}

func displayChild(v Value, seen visitSet) string {
	switch x := v.(type) {
	case String:
		return strconv.Quote(x.V)
	case *List:
		return displayList(x, seen)
	case *Dict:
		return displayDict(x, seen)
	case *Struct:
		return displayStruct(x, seen)
	default:
		return v.String()
	}
}

// Visitor is called once per reachable child value during Traverse.
type Visitor func(Value)

// Traverse implements the visitor-style reference traversal spec §4.3
// requires for the optional cycle-detecting garbage collector: it visits
// v's direct children (not v itself) without attempting to recurse,
// leaving cycle-safety to the caller's own visited-set bookkeeping.
func Traverse(v Value, visit Visitor) {
	switch x := v.(type) {
	case *List:
		for _, e := range x.Elements {
			visit(e)
		}
	case *Dict:
		for _, k := range x.keys {
			val, _ := x.Get(k)
			visit(val)
		}
	case *Struct:
		for _, f := range x.Fields {
			visit(f)
		}
	}
}
