// Package eval implements naab's tree-walking evaluator (spec §4.10): the
// statement and expression semantics that run an *ast.Program directly
// against the value model in internal/value, with no intermediate IR.
package eval

import (
	"github.com/sunholo/naab/internal/ast"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/executor"
	"github.com/sunholo/naab/internal/value"
)

// DefaultMaxCallDepth is the recursion cap spec §4.10 requires before
// raising the fatal E_CALL_DEPTH error.
const DefaultMaxCallDepth = 10000

// ctrl signals non-local control flow bubbling up out of evalStmt/evalCompound.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

// Evaluator holds the state shared across one program run: the struct
// registry, the executor registry used by inline-code/block-ref
// expressions, the module importer, and the live call stack.
type Evaluator struct {
	Global       *Environment
	Registry     *executor.Registry
	Importer     Importer
	StructDefs   map[string]*value.StructDef
	StructDefaults map[string]map[string]ast.Expr
	Blocks       map[string]*value.Block
	MaxCallDepth int
	File         string

	stack     []nerrors.StackFrame
	callDepth int
}

// New constructs an Evaluator with an empty global environment and the
// builtins from builtinTable installed.
func New(reg *executor.Registry, file string) *Evaluator {
	e := &Evaluator{
		Global:       NewEnvironment(),
		Registry:     reg,
		Importer:     noImporter{},
		StructDefs:   make(map[string]*value.StructDef),
		StructDefaults: make(map[string]map[string]ast.Expr),
		Blocks:       make(map[string]*value.Block),
		MaxCallDepth: DefaultMaxCallDepth,
		File:         file,
	}
	installBuiltins(e.Global)
	return e
}

// RunProgram registers the program's struct/enum/function declarations into
// the global environment, then runs its main block, if any.
func (e *Evaluator) RunProgram(prog *ast.Program) (value.Value, *nerrors.NaabError) {
	for _, im := range prog.Imports {
		ns, err := e.Importer.ResolveImport(im.Specifier, prog.Path)
		if err != nil {
			return nil, err
		}
		e.bindImport(im, ns)
	}
	for _, sd := range prog.Structs {
		names := make([]string, len(sd.Fields))
		for i, f := range sd.Fields {
			names[i] = f.Name
		}
		e.StructDefs[sd.Name] = value.NewStructDef(sd.Name, names)
		e.registerStructDefaults(sd)
	}
	for _, en := range prog.Enums {
		e.defineEnum(en)
	}
	for _, fd := range prog.Functions {
		e.Global.Define(fd.Name, &Closure{Name: fd.Name, Params: fd.Params, Body: fd.Body, Env: e.Global})
	}
	if prog.Main == nil {
		return value.NullValue, nil
	}
	res, _, err := e.evalCompound(prog.Main, e.Global.Child())
	if err != nil {
		return nil, err
	}
	return res, nil
}

// EvalTopLevel runs prog's struct/enum/function declarations and every
// statement of its main block directly against e.Global, rather than a
// child scope, so a `let` at one call is still visible to the next. This
// is what the REPL (spec SPEC_FULL §12) uses in place of RunProgram, since
// a script's normal per-run main scope would discard prompt-to-prompt
// bindings.
func (e *Evaluator) EvalTopLevel(prog *ast.Program) (value.Value, *nerrors.NaabError) {
	for _, sd := range prog.Structs {
		names := make([]string, len(sd.Fields))
		for i, f := range sd.Fields {
			names[i] = f.Name
		}
		e.StructDefs[sd.Name] = value.NewStructDef(sd.Name, names)
		e.registerStructDefaults(sd)
	}
	for _, en := range prog.Enums {
		e.defineEnum(en)
	}
	for _, fd := range prog.Functions {
		e.Global.Define(fd.Name, &Closure{Name: fd.Name, Params: fd.Params, Body: fd.Body, Env: e.Global})
	}
	if prog.Main == nil {
		return value.NullValue, nil
	}
	var result value.Value = value.NullValue
	for _, s := range prog.Main.Stmts {
		v, c, err := e.evalStmt(s, e.Global)
		if err != nil {
			return nil, err
		}
		if c != ctrlNone {
			break
		}
		result = v
	}
	return result, nil
}

func (e *Evaluator) bindImport(im *ast.ImportDecl, ns *value.Dict) {
	if im.Star {
		e.Global.Define(im.Alias, ns)
		return
	}
	for i, name := range im.Names {
		target := name
		if im.Aliases[i] != "" {
			target = im.Aliases[i]
		}
		v, ok := ns.Get(name)
		if !ok {
			v = value.NullValue
		}
		e.Global.Define(target, v)
		// A struct or enum-variant type crosses module boundaries as a
		// StructDef value in the export dict; re-key it under the local
		// (possibly aliased) name so struct-literal lookups by that name
		// resolve the same way they would for a locally declared type.
		if def, ok := v.(*value.StructDef); ok {
			e.StructDefs[target] = def
		}
	}
}

// registerStructDefaults records sd's field default expressions (spec §4.8)
// so evalStructLit can fall back to them for fields the literal omits,
// instead of treating every omission as a missing-field error.
func (e *Evaluator) registerStructDefaults(sd *ast.StructDecl) {
	var defaults map[string]ast.Expr
	for _, f := range sd.Fields {
		if f.Default == nil {
			continue
		}
		if defaults == nil {
			defaults = make(map[string]ast.Expr)
		}
		defaults[f.Name] = f.Default
	}
	if defaults != nil {
		e.StructDefaults[sd.Name] = defaults
	}
}

// defineEnum represents each variant as a struct value constructed via a
// callable per-variant closure built from a builtin function (spec §4.1's
// sum-type sugar lowers directly onto the struct model: a variant with N
// fields is a StructDef named "<Enum>.<Variant>" with those field names,
// nullary variants are eagerly-constructed singleton instances).
func (e *Evaluator) defineEnum(en *ast.EnumDecl) {
	for _, v := range en.Variants {
		qualified := en.Name + "." + v.Name
		if len(v.Fields) == 0 {
			def := value.NewStructDef(qualified, nil)
			e.StructDefs[qualified] = def
			e.Global.Define(v.Name, &value.Struct{Def: def, Fields: nil})
			continue
		}
		fieldNames := make([]string, len(v.Fields))
		for i := range v.Fields {
			fieldNames[i] = indexedFieldName(i)
		}
		def := value.NewStructDef(qualified, fieldNames)
		e.StructDefs[qualified] = def
		e.Global.Define(v.Name, newEnumConstructor(def))
	}
}

func indexedFieldName(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return "_" + string(digits[i])
	}
	return "_f"
}

func newEnumConstructor(def *value.StructDef) *BuiltinFunction {
	return &BuiltinFunction{
		Name: def.Name,
		Fn: func(args []value.Value) (value.Value, *nerrors.NaabError) {
			if len(args) != len(def.FieldName) {
				return nil, nerrors.NewError(nerrors.EArity, "eval", "wrong number of arguments constructing "+def.Name)
			}
			return &value.Struct{Def: def, Fields: append([]value.Value(nil), args...)}, nil
		},
	}
}

// pushFrame/popFrame maintain the call stack attached to every NaabError
// that unwinds through a function call (spec §4.11).
func (e *Evaluator) pushFrame(f nerrors.StackFrame) {
	e.stack = append(e.stack, f)
}

func (e *Evaluator) popFrame() {
	e.stack = e.stack[:len(e.stack)-1]
}

func (e *Evaluator) snapshotStack() []nerrors.StackFrame {
	out := make([]nerrors.StackFrame, len(e.stack))
	copy(out, e.stack)
	return out
}

func (e *Evaluator) fail(err *nerrors.NaabError) *nerrors.NaabError {
	if err != nil && err.Frames == nil {
		err.WithFrames(e.snapshotStack())
	}
	return err
}

// evalCompound runs a brace-delimited statement sequence in env as given
// (evalStmt passes a fresh env.Child() for a nested block), returning the
// value of its last statement as its result, per the expression-oriented
// `if`/block convention.
func (e *Evaluator) evalCompound(c *ast.CompoundStmt, env *Environment) (value.Value, ctrl, *nerrors.NaabError) {
	var result value.Value = value.NullValue
	for _, s := range c.Stmts {
		v, sig, err := e.evalStmt(s, env)
		if err != nil {
			return nil, ctrlNone, err
		}
		result = v
		if sig != ctrlNone {
			return result, sig, nil
		}
	}
	return result, ctrlNone, nil
}

func (e *Evaluator) evalStmt(s ast.Stmt, env *Environment) (value.Value, ctrl, *nerrors.NaabError) {
	switch st := s.(type) {
	case *ast.CompoundStmt:
		return e.evalCompound(st, env.Child())
	case *ast.VarDeclStmt:
		v, err := e.evalExpr(st.Init, env)
		if err != nil {
			return nil, ctrlNone, e.fail(err)
		}
		env.Define(st.Name, v)
		return value.NullValue, ctrlNone, nil
	case *ast.IfStmt:
		cond, err := e.evalExpr(st.Cond, env)
		if err != nil {
			return nil, ctrlNone, e.fail(err)
		}
		if value.Truthy(cond) {
			return e.evalCompound(st.Then, env.Child())
		}
		if st.Else == nil {
			return value.NullValue, ctrlNone, nil
		}
		return e.evalStmt(st.Else, env)
	case *ast.ForStmt:
		return e.evalFor(st, env)
	case *ast.WhileStmt:
		return e.evalWhile(st, env)
	case *ast.ReturnStmt:
		if st.Value == nil {
			return value.NullValue, ctrlReturn, nil
		}
		v, err := e.evalExpr(st.Value, env)
		if err != nil {
			return nil, ctrlNone, e.fail(err)
		}
		return v, ctrlReturn, nil
	case *ast.BreakStmt:
		return value.NullValue, ctrlBreak, nil
	case *ast.ContinueStmt:
		return value.NullValue, ctrlContinue, nil
	case *ast.TryStmt:
		return e.evalTry(st, env)
	case *ast.ThrowStmt:
		v, err := e.evalExpr(st.Value, env)
		if err != nil {
			return nil, ctrlNone, e.fail(err)
		}
		thrown := nerrors.NewError(nerrors.EThrown, "eval", "uncaught exception: "+value.ToDisplayString(v))
		thrown.Value = v
		return nil, ctrlNone, e.fail(thrown)
	case *ast.ExprStmt:
		v, err := e.evalExpr(st.X, env)
		if err != nil {
			return nil, ctrlNone, e.fail(err)
		}
		return v, ctrlNone, nil
	default:
		return nil, ctrlNone, e.fail(nerrors.NewError(nerrors.EType, "eval", "unhandled statement node"))
	}
}

func (e *Evaluator) evalFor(st *ast.ForStmt, env *Environment) (value.Value, ctrl, *nerrors.NaabError) {
	items, err := e.iterableValues(st.Iterable, env)
	if err != nil {
		return nil, ctrlNone, e.fail(err)
	}
	var result value.Value = value.NullValue
	for _, item := range items {
		loopEnv := env.Child()
		loopEnv.Define(st.LoopVar, item)
		v, sig, err := e.evalCompound(st.Body, loopEnv)
		if err != nil {
			return nil, ctrlNone, err
		}
		result = v
		if sig == ctrlBreak {
			break
		}
		if sig == ctrlReturn {
			return result, ctrlReturn, nil
		}
		// ctrlContinue and ctrlNone both fall through to the next item.
	}
	return result, ctrlNone, nil
}

func (e *Evaluator) evalWhile(st *ast.WhileStmt, env *Environment) (value.Value, ctrl, *nerrors.NaabError) {
	var result value.Value = value.NullValue
	for {
		cond, err := e.evalExpr(st.Cond, env)
		if err != nil {
			return nil, ctrlNone, e.fail(err)
		}
		if !value.Truthy(cond) {
			break
		}
		v, sig, err := e.evalCompound(st.Body, env.Child())
		if err != nil {
			return nil, ctrlNone, err
		}
		result = v
		if sig == ctrlBreak {
			break
		}
		if sig == ctrlReturn {
			return result, ctrlReturn, nil
		}
	}
	return result, ctrlNone, nil
}

// evalTry implements try/catch/finally with the spec §9(b) open-question
// decision that a finally clause's own control flow or error replaces
// whatever was in flight from the try/catch body.
func (e *Evaluator) evalTry(st *ast.TryStmt, env *Environment) (value.Value, ctrl, *nerrors.NaabError) {
	res, sig, err := e.evalCompound(st.Body, env.Child())
	if err != nil && err.Kind().Catchable(false) {
		catchEnv := env.Child()
		var thrown value.Value = value.NullValue
		if v, ok := err.Value.(value.Value); ok && v != nil {
			thrown = v
		} else {
			thrown = value.String{V: err.Error()}
		}
		catchEnv.Define(st.CatchParam, thrown)
		res, sig, err = e.evalCompound(st.CatchBody, catchEnv)
	}
	if st.Finally != nil {
		finRes, finSig, finErr := e.evalCompound(st.Finally, env.Child())
		if finErr != nil || finSig != ctrlNone {
			return finRes, finSig, finErr
		}
	}
	return res, sig, err
}

func (e *Evaluator) iterableValues(expr ast.Expr, env *Environment) ([]value.Value, *nerrors.NaabError) {
	if r, ok := expr.(*ast.RangeExpr); ok {
		return e.evalRangeValues(r, env)
	}
	v, err := e.evalExpr(expr, env)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *value.List:
		return x.Elements, nil
	case *value.Dict:
		keys := x.Keys()
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = value.String{V: k}
		}
		return out, nil
	case value.String:
		runes := []rune(x.V)
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.String{V: string(r)}
		}
		return out, nil
	default:
		return nil, nerrors.NewError(nerrors.EType, "eval", "cannot iterate over a "+value.TypeOf(v))
	}
}
