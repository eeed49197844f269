package eval

import (
	"errors"

	"github.com/sunholo/naab/internal/ast"
	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/marshal"
	"github.com/sunholo/naab/internal/value"
)

func (e *Evaluator) evalExpr(x ast.Expr, env *Environment) (value.Value, *nerrors.NaabError) {
	switch n := x.(type) {
	case *ast.Identifier:
		v, err := env.Get(n.Name)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *ast.Literal:
		return literalValue(n), nil
	case *ast.ListExpr:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := e.evalExpr(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.NewList(elems), nil
	case *ast.DictExpr:
		d := value.NewDict()
		for _, ent := range n.Entries {
			kv, err := e.evalExpr(ent.Key, env)
			if err != nil {
				return nil, err
			}
			vv, err := e.evalExpr(ent.Value, env)
			if err != nil {
				return nil, err
			}
			key, ok := kv.(value.String)
			if !ok {
				return nil, nerrors.NewError(nerrors.EType, "eval", "dict keys must be strings")
			}
			d.Set(key.V, vv)
		}
		return d, nil
	case *ast.StructLitExpr:
		return e.evalStructLit(n, env)
	case *ast.RangeExpr:
		vals, err := e.evalRangeValues(n, env)
		if err != nil {
			return nil, err
		}
		return value.NewList(vals), nil
	case *ast.IfExpr:
		cond, err := e.evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(cond) {
			return e.evalExpr(n.Then, env)
		}
		return e.evalExpr(n.Else, env)
	case *ast.LambdaExpr:
		return &Closure{Params: n.Params, Expr: n.Body, Env: env}, nil
	case *ast.BinaryExpr:
		return e.evalBinary(n, env)
	case *ast.UnaryExpr:
		return e.evalUnary(n, env)
	case *ast.CallExpr:
		return e.evalCall(n, env)
	case *ast.MemberExpr:
		v, _, err := e.evalMember(n, env)
		return v, err
	case *ast.IndexExpr:
		return e.evalIndex(n, env)
	case *ast.InlineCodeExpr:
		return e.evalInlineCode(n, env)
	case *ast.BlockRefExpr:
		return e.evalBlockRef(n, env)
	case *ast.ErrorExpr:
		return nil, nerrors.NewError(nerrors.EParse, "eval", n.Msg)
	default:
		return nil, nerrors.NewError(nerrors.EType, "eval", "unhandled expression node")
	}
}

func literalValue(l *ast.Literal) value.Value {
	switch l.Kind {
	case ast.IntLit:
		return value.Int{V: l.Value.(int64)}
	case ast.FloatLit:
		return value.Float{V: l.Value.(float64)}
	case ast.StringLit:
		return value.String{V: l.Value.(string)}
	case ast.BoolLit:
		return value.Bool{V: l.Value.(bool)}
	default:
		return value.NullValue
	}
}

func (e *Evaluator) evalStructLit(n *ast.StructLitExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	def, ok := e.StructDefs[n.TypeName]
	if !ok {
		return nil, nerrors.NewError(nerrors.EType, "eval", "undeclared struct type '"+n.TypeName+"'")
	}
	defaults := e.StructDefaults[n.TypeName]
	fields := make([]value.Value, len(def.FieldName))
	provided := make(map[string]bool, len(n.Fields))
	for _, fi := range n.Fields {
		if _, ok := def.FieldIdx[fi.Name]; !ok {
			err := nerrors.NewError(nerrors.EStructField, "eval", "struct '"+n.TypeName+"' has no field '"+fi.Name+"'")
			if fix := nerrors.Suggest(fi.Name, def.FieldName); fix != nil {
				err.Rep.Fix = fix
			}
			return nil, err
		}
		provided[fi.Name] = true
	}
	hasDefault := make(map[string]bool, len(defaults))
	for name := range defaults {
		hasDefault[name] = true
	}
	// marshal.ValidateStructFields is the §4.8 required-field check: a
	// field without a default that's absent here raises E_STRUCT_FIELD
	// instead of silently defaulting to Null.
	if err := marshal.ValidateStructFields(def, provided, hasDefault); err != nil {
		return nil, err
	}
	for i, name := range def.FieldName {
		if !provided[name] {
			if d, ok := defaults[name]; ok {
				v, err := e.evalExpr(d, env)
				if err != nil {
					return nil, err
				}
				fields[i] = v
			}
		}
	}
	for _, fi := range n.Fields {
		idx := def.FieldIdx[fi.Name]
		v, err := e.evalExpr(fi.Value, env)
		if err != nil {
			return nil, err
		}
		fields[idx] = v
	}
	return &value.Struct{Def: def, Fields: fields}, nil
}

func (e *Evaluator) evalRangeValues(r *ast.RangeExpr, env *Environment) ([]value.Value, *nerrors.NaabError) {
	loV, err := e.evalExpr(r.Lo, env)
	if err != nil {
		return nil, err
	}
	hiV, err := e.evalExpr(r.Hi, env)
	if err != nil {
		return nil, err
	}
	lo, ok := loV.(value.Int)
	if !ok {
		return nil, nerrors.NewError(nerrors.EType, "eval", "range bounds must be int")
	}
	hi, ok := hiV.(value.Int)
	if !ok {
		return nil, nerrors.NewError(nerrors.EType, "eval", "range bounds must be int")
	}
	end := hi.V
	if r.Inclusive {
		end++
	}
	if end < lo.V {
		return []value.Value{}, nil
	}
	out := make([]value.Value, 0, end-lo.V)
	for i := lo.V; i < end; i++ {
		out = append(out, value.Int{V: i})
	}
	return out, nil
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	v, err := e.evalExpr(n.X, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		switch x := v.(type) {
		case value.Int:
			return value.Int{V: -x.V}, nil
		case value.Float:
			return value.Float{V: -x.V}, nil
		}
		return nil, nerrors.NewError(nerrors.EType, "eval", "unary '-' requires a number")
	case "!":
		return value.Bool{V: !value.Truthy(v)}, nil
	default:
		return nil, nerrors.NewError(nerrors.EType, "eval", "unknown unary operator '"+n.Op+"'")
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	switch n.Op {
	case "=":
		return e.evalAssign(n, env)
	case "&&":
		l, err := e.evalExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !value.Truthy(l) {
			return l, nil
		}
		return e.evalExpr(n.Right, env)
	case "||":
		l, err := e.evalExpr(n.Left, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(l) {
			return l, nil
		}
		return e.evalExpr(n.Right, env)
	case "|>":
		return e.evalPipeline(n, env)
	}
	l, err := e.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := e.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.Op, l, r)
}

func (e *Evaluator) evalPipeline(n *ast.BinaryExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	l, err := e.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	if call, ok := n.Right.(*ast.CallExpr); ok {
		args := make([]value.Value, 0, len(call.Args)+1)
		args = append(args, l)
		for _, a := range call.Args {
			v, err := e.evalExpr(a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		callee, err := e.evalExpr(call.Callee, env)
		if err != nil {
			return nil, err
		}
		return e.apply(callee, args)
	}
	callee, err := e.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	return e.apply(callee, []value.Value{l})
}

func (e *Evaluator) evalAssign(n *ast.BinaryExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	rv, err := e.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	switch target := n.Left.(type) {
	case *ast.Identifier:
		if aerr := env.Assign(target.Name, rv); aerr != nil {
			return nil, aerr
		}
		return rv, nil
	case *ast.MemberExpr:
		xv, err := e.evalExpr(target.X, env)
		if err != nil {
			return nil, err
		}
		switch s := xv.(type) {
		case *value.Struct:
			if !s.Set(target.Name, rv) {
				err := nerrors.NewError(nerrors.EStructField, "eval", "struct '"+s.Def.Name+"' has no field '"+target.Name+"'")
				if fix := nerrors.Suggest(target.Name, s.Def.FieldName); fix != nil {
					err.Rep.Fix = fix
				}
				return nil, err
			}
			return rv, nil
		case *value.Dict:
			s.Set(target.Name, rv)
			return rv, nil
		default:
			return nil, nerrors.NewError(nerrors.EAssignTarget, "eval", "cannot assign to a member of a "+value.TypeOf(xv))
		}
	case *ast.IndexExpr:
		xv, err := e.evalExpr(target.X, env)
		if err != nil {
			return nil, err
		}
		iv, err := e.evalExpr(target.Index, env)
		if err != nil {
			return nil, err
		}
		switch container := xv.(type) {
		case *value.List:
			idx, ok := iv.(value.Int)
			if !ok {
				return nil, nerrors.NewError(nerrors.EType, "eval", "list index must be int")
			}
			i := int(idx.V)
			if i < 0 {
				i += len(container.Elements)
			}
			if i < 0 || i >= len(container.Elements) {
				return nil, nerrors.NewError(nerrors.EIndex, "eval", "list index out of range")
			}
			container.Elements[i] = rv
			return rv, nil
		case *value.Dict:
			key, ok := iv.(value.String)
			if !ok {
				return nil, nerrors.NewError(nerrors.EType, "eval", "dict key must be string")
			}
			container.Set(key.V, rv)
			return rv, nil
		default:
			return nil, nerrors.NewError(nerrors.EAssignTarget, "eval", "cannot index-assign into a "+value.TypeOf(xv))
		}
	default:
		return nil, nerrors.NewError(nerrors.EAssignTarget, "eval", "invalid assignment target")
	}
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	xv, err := e.evalExpr(n.X, env)
	if err != nil {
		return nil, err
	}
	iv, err := e.evalExpr(n.Index, env)
	if err != nil {
		return nil, err
	}
	switch x := xv.(type) {
	case *value.List:
		idx, ok := iv.(value.Int)
		if !ok {
			return nil, nerrors.NewError(nerrors.EType, "eval", "list index must be int")
		}
		i := int(idx.V)
		if i < 0 {
			i += len(x.Elements)
		}
		if i < 0 || i >= len(x.Elements) {
			return nil, nerrors.NewError(nerrors.EIndex, "eval", "list index out of range")
		}
		return x.Elements[i], nil
	case *value.Dict:
		key, ok := iv.(value.String)
		if !ok {
			return nil, nerrors.NewError(nerrors.EType, "eval", "dict key must be string")
		}
		v, ok := x.Get(key.V)
		if !ok {
			return nil, nerrors.NewError(nerrors.EIndex, "eval", "dict has no key '"+key.V+"'")
		}
		return v, nil
	case value.String:
		idx, ok := iv.(value.Int)
		if !ok {
			return nil, nerrors.NewError(nerrors.EType, "eval", "string index must be int")
		}
		runes := []rune(x.V)
		i := int(idx.V)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return nil, nerrors.NewError(nerrors.EIndex, "eval", "string index out of range")
		}
		return value.String{V: string(runes[i])}, nil
	default:
		return nil, nerrors.NewError(nerrors.EType, "eval", "cannot index a "+value.TypeOf(xv))
	}
}

// evalMember returns the accessed value plus, when X names a module
// namespace or block (so the caller may be about to perform a call rather
// than a plain read), the raw X value for evalCall to special-case.
func (e *Evaluator) evalMember(n *ast.MemberExpr, env *Environment) (value.Value, value.Value, *nerrors.NaabError) {
	xv, err := e.evalExpr(n.X, env)
	if err != nil {
		return nil, nil, err
	}
	switch x := xv.(type) {
	case *value.Struct:
		v, ok := x.Get(n.Name)
		if !ok {
			err := nerrors.NewError(nerrors.EStructField, "eval", "struct '"+x.Def.Name+"' has no field '"+n.Name+"'")
			if fix := nerrors.Suggest(n.Name, x.Def.FieldName); fix != nil {
				err.Rep.Fix = fix
			}
			return nil, nil, err
		}
		return v, xv, nil
	case *value.Dict:
		v, ok := x.Get(n.Name)
		if !ok {
			return nil, nil, nerrors.NewError(nerrors.EIndex, "eval", "module has no export '"+n.Name+"'")
		}
		return v, xv, nil
	case *value.Block:
		// Bare member access on a block (no call) is only meaningful as the
		// callee half of a CallExpr; evalCall handles that directly.
		return value.NullValue, xv, nil
	default:
		return nil, nil, nerrors.NewError(nerrors.EType, "eval", "cannot access member '"+n.Name+"' of a "+value.TypeOf(xv))
	}
}

func (e *Evaluator) evalCall(n *ast.CallExpr, env *Environment) (value.Value, *nerrors.NaabError) {
	if member, ok := n.Callee.(*ast.MemberExpr); ok {
		xv, err := e.evalExpr(member.X, env)
		if err != nil {
			return nil, err
		}
		if blk, ok := xv.(*value.Block); ok {
			args, err := e.evalArgs(n.Args, env)
			if err != nil {
				return nil, err
			}
			v, callErr := blk.Exec.CallFunction(member.Name, args)
			if callErr != nil {
				return nil, e.fail(wrapForeignErr(blk.Language, callErr))
			}
			return v, nil
		}
	}
	callee, err := e.evalExpr(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return e.apply(callee, args)
}

func (e *Evaluator) evalArgs(exprs []ast.Expr, env *Environment) ([]value.Value, *nerrors.NaabError) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// apply dispatches a call to whatever Value implements callable semantics.
func (e *Evaluator) apply(callee value.Value, args []value.Value) (value.Value, *nerrors.NaabError) {
	switch fn := callee.(type) {
	case *Closure:
		return e.callClosure(fn, args)
	case *BuiltinFunction:
		v, err := fn.Fn(args)
		if err != nil {
			return nil, e.fail(err)
		}
		return v, nil
	default:
		return nil, nerrors.NewError(nerrors.ENotCallable, "eval", "value of type "+value.TypeOf(callee)+" is not callable")
	}
}

func (e *Evaluator) callClosure(fn *Closure, args []value.Value) (value.Value, *nerrors.NaabError) {
	e.callDepth++
	defer func() { e.callDepth-- }()
	if e.callDepth > e.MaxCallDepth {
		return nil, e.fail(nerrors.NewError(nerrors.ECallDepth, "eval", "maximum call depth exceeded"))
	}
	callEnv := fn.Env.Child()
	if err := bindParams(callEnv, e, fn.Params, args); err != nil {
		return nil, e.fail(err)
	}
	name := fn.Name
	if name == "" {
		name = "<lambda>"
	}
	e.pushFrame(nerrors.StackFrame{Language: "naab", Function: name, File: e.File})
	defer e.popFrame()

	if fn.Expr != nil {
		return e.evalExpr(fn.Expr, callEnv)
	}
	res, sig, err := e.evalCompound(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if sig == ctrlReturn {
		return res, nil
	}
	return value.NullValue, nil
}

func bindParams(env *Environment, e *Evaluator, params []*ast.Param, args []value.Value) *nerrors.NaabError {
	required := 0
	for _, p := range params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) < required || len(args) > len(params) {
		return nerrors.NewError(nerrors.EArity, "eval", "wrong number of arguments")
	}
	for i, p := range params {
		if i < len(args) {
			env.Define(p.Name, args[i])
			continue
		}
		v, err := e.evalExpr(p.Default, env)
		if err != nil {
			return err
		}
		env.Define(p.Name, v)
	}
	return nil
}

func wrapForeignErr(lang string, err error) *nerrors.NaabError {
	if ne, ok := err.(*nerrors.NaabError); ok {
		return ne
	}
	if errors.Is(err, value.ErrTimeout) {
		return nerrors.NewError(nerrors.ETimeout, "executor:"+lang, err.Error())
	}
	ne := nerrors.NewError(nerrors.EForeign, "executor:"+lang, err.Error())
	return ne
}
