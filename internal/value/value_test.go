package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, Truthy(NullValue))
	require.False(t, Truthy(Bool{false}))
	require.False(t, Truthy(Int{0}))
	require.False(t, Truthy(Float{0}))
	require.False(t, Truthy(String{""}))
	require.False(t, Truthy(NewList(nil)))
	require.False(t, Truthy(NewDict()))

	require.True(t, Truthy(Bool{true}))
	require.True(t, Truthy(Int{1}))
	require.True(t, Truthy(String{"x"}))
}

func TestEqualCrossNumericPromotion(t *testing.T) {
	require.True(t, Equal(Int{2}, Float{2.0}))
	require.True(t, Equal(Float{2.0}, Int{2}))
	require.False(t, Equal(Int{2}, String{"2"}))
}

func TestListIsSharedMutable(t *testing.T) {
	l := NewList([]Value{Int{1}})
	alias := l
	alias.Elements = append(alias.Elements, Int{2})
	require.Equal(t, 2, len(l.Elements))
}

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("b", Int{1})
	d.Set("a", Int{2})
	require.Equal(t, []string{"b", "a"}, d.Keys())
}

func TestDisplayStringDetectsCycles(t *testing.T) {
	l := NewList(nil)
	l.Elements = append(l.Elements, l)
	require.NotPanics(t, func() { _ = ToDisplayString(l) })
}

func TestStructFieldAccess(t *testing.T) {
	def := NewStructDef("Point", []string{"x", "y"})
	s := &Struct{Def: def, Fields: []Value{Int{1}, Int{2}}}
	v, ok := s.Get("y")
	require.True(t, ok)
	require.Equal(t, Int{2}, v)
	_, ok = s.Get("z")
	require.False(t, ok)
}
