package eval

import (
	"math/bits"

	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/value"
)

// applyBinary evaluates every non-short-circuiting binary operator. && ||
// and |> are handled in evalBinary since they need lazy right-hand
// evaluation or expression-shape rewriting.
func applyBinary(op string, l, r value.Value) (value.Value, *nerrors.NaabError) {
	switch op {
	case "==":
		return value.Bool{V: value.Equal(l, r)}, nil
	case "!=":
		return value.Bool{V: !value.Equal(l, r)}, nil
	case "<", ">", "<=", ">=":
		return compare(op, l, r)
	case "+":
		return add(l, r)
	case "-", "*", "/", "%":
		return arith(op, l, r)
	default:
		return nil, nerrors.NewError(nerrors.EType, "eval", "unknown operator '"+op+"'")
	}
}

func add(l, r value.Value) (value.Value, *nerrors.NaabError) {
	switch a := l.(type) {
	case value.String:
		if b, ok := r.(value.String); ok {
			return value.String{V: a.V + b.V}, nil
		}
	case *value.List:
		if b, ok := r.(*value.List); ok {
			out := make([]value.Value, 0, len(a.Elements)+len(b.Elements))
			out = append(out, a.Elements...)
			out = append(out, b.Elements...)
			return value.NewList(out), nil
		}
	}
	return arith("+", l, r)
}

func arith(op string, l, r value.Value) (value.Value, *nerrors.NaabError) {
	li, lIsInt := l.(value.Int)
	ri, rIsInt := r.(value.Int)
	if lIsInt && rIsInt {
		return intArith(op, li.V, ri.V)
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, nerrors.NewError(nerrors.EType, "eval", "operator '"+op+"' requires numbers")
	}
	switch op {
	case "+":
		return value.Float{V: lf + rf}, nil
	case "-":
		return value.Float{V: lf - rf}, nil
	case "*":
		return value.Float{V: lf * rf}, nil
	case "/":
		if rf == 0 {
			return nil, nerrors.NewError(nerrors.EDivZero, "eval", "division by zero")
		}
		return value.Float{V: lf / rf}, nil
	case "%":
		if rf == 0 {
			return nil, nerrors.NewError(nerrors.EDivZero, "eval", "division by zero")
		}
		return value.Float{V: float64(int64(lf) % int64(rf))}, nil
	}
	return nil, nerrors.NewError(nerrors.EType, "eval", "unknown operator '"+op+"'")
}

func intArith(op string, l, r int64) (value.Value, *nerrors.NaabError) {
	switch op {
	case "+":
		sum64, _ := bits.Add64(uint64(l), uint64(r), 0)
		sum := int64(sum64)
		if (l >= 0) == (r >= 0) && (sum >= 0) != (l >= 0) {
			return nil, nerrors.NewError(nerrors.EOverflow, "eval", "integer overflow in '+'")
		}
		return value.Int{V: sum}, nil
	case "-":
		diff64, _ := bits.Sub64(uint64(l), uint64(r), 0)
		diff := int64(diff64)
		if (l >= 0) != (r >= 0) && (diff >= 0) != (l >= 0) {
			return nil, nerrors.NewError(nerrors.EOverflow, "eval", "integer overflow in '-'")
		}
		return value.Int{V: diff}, nil
	case "*":
		product, overflow := mulOverflows64(l, r)
		if overflow {
			return nil, nerrors.NewError(nerrors.EOverflow, "eval", "integer overflow in '*'")
		}
		return value.Int{V: product}, nil
	case "/":
		if r == 0 {
			return nil, nerrors.NewError(nerrors.EDivZero, "eval", "division by zero")
		}
		return value.Int{V: l / r}, nil
	case "%":
		if r == 0 {
			return nil, nerrors.NewError(nerrors.EDivZero, "eval", "division by zero")
		}
		return value.Int{V: l % r}, nil
	}
	return nil, nerrors.NewError(nerrors.EType, "eval", "unknown operator '"+op+"'")
}

// mulOverflows64 multiplies two signed 64-bit operands using bits.Mul64 on
// their magnitudes, the only way to see the high word of the product and
// catch overflow before it's silently discarded.
func mulOverflows64(l, r int64) (int64, bool) {
	if l == 0 || r == 0 {
		return 0, false
	}
	neg := (l < 0) != (r < 0)
	hi, lo := bits.Mul64(absUint64(l), absUint64(r))
	if hi != 0 {
		return 0, true
	}
	if neg {
		if lo > uint64(1)<<63 {
			return 0, true
		}
		return -int64(lo), false
	}
	if lo > uint64(1<<63-1) {
		return 0, true
	}
	return int64(lo), false
}

// absUint64 returns |x| as a uint64, including math.MinInt64 whose magnitude
// (2^63) has no int64 representation.
func absUint64(x int64) uint64 {
	if x >= 0 {
		return uint64(x)
	}
	return uint64(-x)
}

func compare(op string, l, r value.Value) (value.Value, *nerrors.NaabError) {
	if ls, ok := l.(value.String); ok {
		if rs, ok := r.(value.String); ok {
			return value.Bool{V: stringCompare(op, ls.V, rs.V)}, nil
		}
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, nerrors.NewError(nerrors.EType, "eval", "operator '"+op+"' requires comparable operands")
	}
	switch op {
	case "<":
		return value.Bool{V: lf < rf}, nil
	case ">":
		return value.Bool{V: lf > rf}, nil
	case "<=":
		return value.Bool{V: lf <= rf}, nil
	case ">=":
		return value.Bool{V: lf >= rf}, nil
	}
	return nil, nerrors.NewError(nerrors.EType, "eval", "unknown operator '"+op+"'")
}

func stringCompare(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func toFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Int:
		return float64(x.V), true
	case value.Float:
		return x.V, true
	default:
		return 0, false
	}
}
