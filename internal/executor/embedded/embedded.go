// Package embedded implements the embedded-interpreter executor pattern
// (spec §4.7 pattern 1) for the "go" language id, using
// github.com/traefik/yaegi as the foreign runtime. The pack's own yaegi
// forks (_examples/breadchris-yaegi, _examples/birowo-yaegi) are the
// library's source tree, not a call-site example, so this adapter is
// grounded on yaegi's public interp.Interpreter API directly (New/Use/Eval)
// rather than a pack usage site; see DESIGN.md.
package embedded

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/sunholo/naab/internal/value"
)

// globalLock serializes every call into any yaegi interpreter in the
// process: spec §4.7 requires the adapter behave as if the foreign runtime
// "has a global lock (conceptually: only one host thread may be inside the
// runtime at a time)", even though yaegi itself is reentrant per
// *interp.Interpreter instance — the spec's contract is about the pattern,
// not this particular runtime's actual thread-safety, so the adapter
// enforces it uniformly.
var globalLock sync.Mutex

// Executor wraps one *interp.Interpreter as a naab Value.Executor. Each
// Executor gets its own sub-environment (a fresh *interp.Interpreter), per
// spec §4.7 ("creates a sub-environment per executor instance").
type Executor struct {
	interp *interp.Interpreter
	stdout bytes.Buffer
}

var _ value.Executor = (*Executor)(nil)

// New constructs an Executor with the Go standard library symbols loaded
// and the interpreter's stdout redirected into the executor's own buffer
// (spec §4.7's "redirects the runtime's stdout/stderr into the executor's
// output buffer").
func New() *Executor {
	e := &Executor{}
	i := interp.New(interp.Options{Stdout: &e.stdout, Stderr: &e.stdout})
	if err := i.Use(stdlib.Symbols); err != nil {
		// stdlib.Symbols is a static table; a failure here means the yaegi
		// version mismatches the linked stdlib, an unrecoverable link error.
		panic(fmt.Sprintf("embedded: failed to install Go stdlib symbols: %v", err))
	}
	e.interp = i
	return e
}

func (e *Executor) Initialized() bool { return e.interp != nil }

func (e *Executor) LanguageID() string { return "go" }

// Bind injects v into the interpreter's global scope under name by
// declaring a package-level var through Eval, since yaegi has no direct
// "set global" API distinct from evaluating Go source.
func (e *Executor) Bind(name string, v value.Value) error {
	globalLock.Lock()
	defer globalLock.Unlock()
	if _, err := e.interp.Eval(fmt.Sprintf("var %s interface{}", name)); err != nil {
		return fmt.Errorf("embedded: declaring %s: %w", name, err)
	}
	ref, err := e.interp.Eval(name)
	if err != nil {
		return fmt.Errorf("embedded: resolving %s: %w", name, err)
	}
	native := toNative(v)
	if ref.CanSet() {
		ref.Set(reflect.ValueOf(&native).Elem())
	}
	return nil
}

func (e *Executor) Execute(code string) error {
	globalLock.Lock()
	defer globalLock.Unlock()
	_, err := e.interp.Eval(code)
	return err
}

func (e *Executor) ExecuteWithReturn(code string) (value.Value, error) {
	globalLock.Lock()
	defer globalLock.Unlock()
	res, err := e.interp.Eval(code)
	if err != nil {
		return nil, err
	}
	return fromNative(res), nil
}

func (e *Executor) CallFunction(name string, args []value.Value) (value.Value, error) {
	globalLock.Lock()
	defer globalLock.Unlock()
	fn, err := e.interp.Eval(name)
	if err != nil {
		return nil, fmt.Errorf("embedded: function %s not defined: %w", name, err)
	}
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("embedded: %s is not a function", name)
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(toNative(a))
	}
	out := fn.Call(in)
	if len(out) == 0 {
		return value.NullValue, nil
	}
	return fromNative(out[0]), nil
}

func (e *Executor) DrainCapturedOutput() string {
	out := e.stdout.String()
	e.stdout.Reset()
	return out
}

func (e *Executor) Close() error { return nil }

// toNative converts a Value into the closest native Go type yaegi's
// reflection-based bridge understands.
func toNative(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return x.V
	case value.Int:
		return x.V
	case value.Float:
		return x.V
	case value.String:
		return x.V
	case *value.List:
		out := make([]interface{}, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = toNative(e)
		}
		return out
	case *value.Dict:
		out := make(map[string]interface{}, x.Len())
		for _, k := range x.Keys() {
			v2, _ := x.Get(k)
			out[k] = toNative(v2)
		}
		return out
	default:
		return v.String()
	}
}

// fromNative converts a yaegi evaluation result back into a Value.
func fromNative(rv reflect.Value) value.Value {
	if !rv.IsValid() {
		return value.NullValue
	}
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return value.NullValue
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return value.Bool{V: rv.Bool()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int{V: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Int{V: int64(rv.Uint())}
	case reflect.Float32, reflect.Float64:
		return value.Float{V: rv.Float()}
	case reflect.String:
		return value.String{V: rv.String()}
	case reflect.Slice, reflect.Array:
		lst := &value.List{}
		for i := 0; i < rv.Len(); i++ {
			lst.Elements = append(lst.Elements, fromNative(rv.Index(i)))
		}
		return lst
	case reflect.Map:
		d := value.NewDict()
		for _, k := range rv.MapKeys() {
			d.Set(fmt.Sprint(k.Interface()), fromNative(rv.MapIndex(k)))
		}
		return d
	default:
		return value.String{V: fmt.Sprint(rv.Interface())}
	}
}
