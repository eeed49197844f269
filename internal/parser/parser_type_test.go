package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/ast"
	"github.com/sunholo/naab/internal/lexer"
)

func parseType(t *testing.T, src string) ast.TypeExpr {
	t.Helper()
	l := lexer.New(src, "<test>")
	p := New(l, "<test>")
	ty := p.parseTypeExpr()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	return ty
}

func TestParseBaseType(t *testing.T) {
	ty := parseType(t, "int")
	base, ok := ty.(*ast.BaseTypeExpr)
	require.True(t, ok)
	require.Equal(t, "int", base.Name)
}

func TestParseArrayType(t *testing.T) {
	ty := parseType(t, "array<int>")
	arr, ok := ty.(*ast.ArrayTypeExpr)
	require.True(t, ok)
	require.Equal(t, "int", arr.Elem.String())
}

func TestParseDictType(t *testing.T) {
	ty := parseType(t, "dict<string,int>")
	d, ok := ty.(*ast.DictTypeExpr)
	require.True(t, ok)
	require.Equal(t, "string", d.Key.String())
	require.Equal(t, "int", d.Value.String())
}

func TestParseNullableType(t *testing.T) {
	ty := parseType(t, "?int")
	n, ok := ty.(*ast.NullableTypeExpr)
	require.True(t, ok)
	require.Equal(t, "int", n.Elem.String())
}

func TestParseUnionType(t *testing.T) {
	ty := parseType(t, "int|string")
	u, ok := ty.(*ast.UnionTypeExpr)
	require.True(t, ok)
	require.Len(t, u.Members, 2)
}

func TestParseQualifiedType(t *testing.T) {
	ty := parseType(t, "m.Point")
	q, ok := ty.(*ast.QualifiedTypeExpr)
	require.True(t, ok)
	require.Equal(t, "m", q.Module)
	require.Equal(t, "Point", q.Name)
}

func TestParseGenericParamType(t *testing.T) {
	ty := parseType(t, "t")
	_, ok := ty.(*ast.GenericParamExpr)
	require.True(t, ok)
}

func TestParseNestedGenericTypeClosesBothAngleBrackets(t *testing.T) {
	// The lexer scans ">>" as one INLINE_CLOSE token; parseTypeExpr must
	// split its credit across both enclosing generic type lists.
	ty := parseType(t, "array<array<int>>")
	outer, ok := ty.(*ast.ArrayTypeExpr)
	require.True(t, ok)
	inner, ok := outer.Elem.(*ast.ArrayTypeExpr)
	require.True(t, ok)
	require.Equal(t, "int", inner.Elem.String())
}
