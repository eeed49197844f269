// Package jit implements the JIT-engine executor pattern (spec §4.7
// pattern 2) for the "js" language id, using github.com/dop251/goja. No
// repo in the example pack imports a JS engine (spec.md names goja
// directly in its own prose for this pattern); see DESIGN.md.
package jit

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"

	"github.com/sunholo/naab/internal/value"
)

// Executor wraps one *goja.Runtime: spec §4.7 requires "one context per
// executor instance, avoiding inter-context state sharing", which a fresh
// goja.Runtime gives for free.
type Executor struct {
	vm      *goja.Runtime
	output  strings.Builder
	timeout time.Duration
}

var _ value.Executor = (*Executor)(nil)

// New constructs an Executor with a console.log shim that appends to the
// captured output buffer instead of writing to the real stdout, and
// timeout as the soft cooperative-interrupt deadline for each call.
func New(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	e := &Executor{vm: goja.New(), timeout: timeout}
	console := e.vm.NewObject()
	console.Set("log", func(call goja.FunctionCall) goja.Value { //nolint:errcheck
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		e.output.WriteString(strings.Join(parts, " "))
		e.output.WriteByte('\n')
		return goja.Undefined()
	})
	e.vm.Set("console", console) //nolint:errcheck
	return e
}

func (e *Executor) Initialized() bool { return e.vm != nil }

func (e *Executor) LanguageID() string { return "js" }

func (e *Executor) Bind(name string, v value.Value) error {
	return e.vm.Set(name, toNative(v))
}

// withInterrupt installs the spec §4.7 "soft timeout flag" via goja's
// cooperative Interrupt mechanism, clearing it once the call returns. If the
// timer actually fires before fn returns, the resulting goja interrupt error
// is reported as value.ErrTimeout (spec §4.10(c)/§4.12) rather than a plain
// foreign exception.
func (e *Executor) withInterrupt(fn func() (goja.Value, error)) (goja.Value, error) {
	var timedOut int32
	timer := time.AfterFunc(e.timeout, func() {
		atomic.StoreInt32(&timedOut, 1)
		e.vm.Interrupt("naab: js execution exceeded its timeout")
	})
	defer timer.Stop()
	res, err := fn()
	if err != nil && atomic.LoadInt32(&timedOut) == 1 {
		return res, fmt.Errorf("jit: %w: %s", value.ErrTimeout, err)
	}
	return res, err
}

// Execute runs code in *library mode*: top level, so subsequent
// CallFunction calls see the definitions it makes (spec §4.7).
func (e *Executor) Execute(code string) error {
	_, err := e.withInterrupt(func() (goja.Value, error) { return e.vm.RunString(code) })
	return err
}

// ExecuteWithReturn runs code in *inline-code mode*, wrapped in an
// immediately-invoked function expression for isolation (spec §4.7), and
// returns its value.
func (e *Executor) ExecuteWithReturn(code string) (value.Value, error) {
	wrapped := "(function(){ return (" + code + "); })()"
	res, err := e.withInterrupt(func() (goja.Value, error) { return e.vm.RunString(wrapped) })
	if err != nil {
		// Not every inline body is an expression; fall back to statement
		// form evaluating __naab_result__ if the caller assigned it.
		wrapped = "(function(){ " + code + "; return typeof __naab_result__ !== 'undefined' ? __naab_result__ : undefined; })()"
		res, err = e.withInterrupt(func() (goja.Value, error) { return e.vm.RunString(wrapped) })
		if err != nil {
			return nil, err
		}
	}
	return fromNative(res), nil
}

func (e *Executor) CallFunction(name string, args []value.Value) (value.Value, error) {
	fnVal := e.vm.Get(name)
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("jit: %s is not a function", name)
	}
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = e.vm.ToValue(toNative(a))
	}
	res, err := fn(goja.Undefined(), jsArgs...)
	if err != nil {
		return nil, err
	}
	return fromNative(res), nil
}

func (e *Executor) DrainCapturedOutput() string {
	out := e.output.String()
	e.output.Reset()
	return out
}

func (e *Executor) Close() error { return nil }

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
	case *value.Struct:
		out := make(map[string]interface{}, len(x.Def.FieldName))
		out["__type"] = x.Def.Name
		for i, name := range x.Def.FieldName {
			out[name] = toNative(x.Fields[i])
		}
		return out
	default:
		return v.String()
	}
}

func fromNative(gv goja.Value) value.Value {
	if gv == nil || goja.IsUndefined(gv) || goja.IsNull(gv) {
		return value.NullValue
	}
	exported := gv.Export()
	return fromInterface(exported)
}

func fromInterface(x interface{}) value.Value {
	switch v := x.(type) {
	case nil:
		return value.NullValue
	case bool:
		return value.Bool{V: v}
	case int64:
		return value.Int{V: v}
	case float64:
		if v == float64(int64(v)) {
			return value.Int{V: int64(v)}
		}
		return value.Float{V: v}
	case string:
		return value.String{V: v}
	case []interface{}:
		lst := &value.List{}
		for _, e := range v {
			lst.Elements = append(lst.Elements, fromInterface(e))
		}
		return lst
	case map[string]interface{}:
		d := value.NewDict()
		for k, e := range v {
			d.Set(k, fromInterface(e))
		}
		return d
	default:
		return value.String{V: fmt.Sprint(v)}
	}
}
