package eval

import (
	"fmt"

	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/value"
)

// BuiltinFunction is a host-implemented callable Value, the naab-visible
// face of this implementation's small standard library (print, len, keys,
// push, type_of, to_string, and the numeric conversions).
type BuiltinFunction struct {
	Name string
	Fn   func(args []value.Value) (value.Value, *nerrors.NaabError)
}

func (b *BuiltinFunction) Type() string   { return "function" }
func (b *BuiltinFunction) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

var _ value.Value = (*BuiltinFunction)(nil)

func installBuiltins(g *Environment) {
	for name, fn := range builtinTable {
		g.Define(name, &BuiltinFunction{Name: name, Fn: fn})
	}
}

var builtinTable = map[string]func(args []value.Value) (value.Value, *nerrors.NaabError){
	"print": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		for i, a := range args {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(value.ToDisplayString(a))
		}
		fmt.Println()
		return value.NullValue, nil
	},
	"len": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("len", args, 1); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case value.String:
			return value.Int{V: int64(len([]rune(x.V)))}, nil
		case *value.List:
			return value.Int{V: int64(len(x.Elements))}, nil
		case *value.Dict:
			return value.Int{V: int64(x.Len())}, nil
		default:
			return nil, nerrors.NewError(nerrors.EType, "eval", "len() requires a string, list, or dict")
		}
	},
	"keys": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("keys", args, 1); err != nil {
			return nil, err
		}
		d, ok := args[0].(*value.Dict)
		if !ok {
			return nil, nerrors.NewError(nerrors.EType, "eval", "keys() requires a dict")
		}
		ks := d.Keys()
		out := make([]value.Value, len(ks))
		for i, k := range ks {
			out[i] = value.String{V: k}
		}
		return value.NewList(out), nil
	},
	"type_of": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("type_of", args, 1); err != nil {
			return nil, err
		}
		return value.String{V: value.TypeOf(args[0])}, nil
	},
	"to_string": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("to_string", args, 1); err != nil {
			return nil, err
		}
		return value.String{V: value.ToDisplayString(args[0])}, nil
	},
	"to_int": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("to_int", args, 1); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case value.Int:
			return x, nil
		case value.Float:
			return value.Int{V: int64(x.V)}, nil
		case value.String:
			var n int64
			if _, scanErr := fmt.Sscanf(x.V, "%d", &n); scanErr != nil {
				return nil, nerrors.NewError(nerrors.EType, "eval", "cannot convert '"+x.V+"' to int")
			}
			return value.Int{V: n}, nil
		default:
			return nil, nerrors.NewError(nerrors.EType, "eval", "to_int() requires an int, float, or string")
		}
	},
	"to_float": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("to_float", args, 1); err != nil {
			return nil, err
		}
		switch x := args[0].(type) {
		case value.Float:
			return x, nil
		case value.Int:
			return value.Float{V: float64(x.V)}, nil
		case value.String:
			var f float64
			if _, scanErr := fmt.Sscanf(x.V, "%g", &f); scanErr != nil {
				return nil, nerrors.NewError(nerrors.EType, "eval", "cannot convert '"+x.V+"' to float")
			}
			return value.Float{V: f}, nil
		default:
			return nil, nerrors.NewError(nerrors.EType, "eval", "to_float() requires an int, float, or string")
		}
	},
	"push": func(args []value.Value) (value.Value, *nerrors.NaabError) {
		if err := arity("push", args, 2); err != nil {
			return nil, err
		}
		l, ok := args[0].(*value.List)
		if !ok {
			return nil, nerrors.NewError(nerrors.EType, "eval", "push() requires a list")
		}
		l.Elements = append(l.Elements, args[1])
		return l, nil
	},
}

func arity(name string, args []value.Value, n int) *nerrors.NaabError {
	if len(args) != n {
		return nerrors.NewError(nerrors.EArity, "eval", fmt.Sprintf("%s() takes %d argument(s)", name, n))
	}
	return nil
}
