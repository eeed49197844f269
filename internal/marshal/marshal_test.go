package marshal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/naab/internal/value"
)

func TestRoundTripScalarsAndCollections(t *testing.T) {
	lst := value.NewList([]value.Value{
		value.Int{V: 1},
		value.String{V: "hi"},
		value.Bool{V: true},
		value.NullValue,
	})
	doc, err := ToJSON(lst)
	require.Nil(t, err)

	back, err := FromJSON(doc, nil)
	require.Nil(t, err)
	l, ok := back.(*value.List)
	require.True(t, ok)
	require.Len(t, l.Elements, 4)
	require.Equal(t, int64(1), l.Elements[0].(value.Int).V)
	require.Equal(t, "hi", l.Elements[1].(value.String).V)
}

func TestStructRoundTrip(t *testing.T) {
	def := value.NewStructDef("Point", []string{"x", "y"})
	p := &value.Struct{Def: def, Fields: []value.Value{value.Int{V: 1}, value.Int{V: 2}}}

	doc, err := ToJSON(p)
	require.Nil(t, err)

	back, err := FromJSON(doc, map[string]*value.StructDef{"Point": def})
	require.Nil(t, err)
	s, ok := back.(*value.Struct)
	require.True(t, ok)
	require.Equal(t, "Point", s.Def.Name)
	require.Equal(t, int64(1), s.Fields[0].(value.Int).V)
}

func TestStructMissingFieldRejected(t *testing.T) {
	def := value.NewStructDef("Point", []string{"x", "y"})
	_, err := FromJSON(`{"__type":"Point","x":1}`, map[string]*value.StructDef{"Point": def})
	require.NotNil(t, err)
	require.Equal(t, "E_STRUCT_FIELD", string(err.Kind()))
}

func TestCoerceIntRejectsFractional(t *testing.T) {
	_, err := CoerceInt(value.Float{V: 1.5})
	require.NotNil(t, err)
	require.Equal(t, "E_MARSHAL_OVERFLOW", string(err.Kind()))

	n, err := CoerceInt(value.Float{V: 4.0})
	require.Nil(t, err)
	require.Equal(t, int64(4), n)
}

func TestDictKeyWithDotEscaped(t *testing.T) {
	d := value.NewDict()
	d.Set("a.b", value.Int{V: 7})
	doc, err := ToJSON(d)
	require.Nil(t, err)

	back, err := FromJSON(doc, nil)
	require.Nil(t, err)
	bd, ok := back.(*value.Dict)
	require.True(t, ok)
	v, ok := bd.Get("a.b")
	require.True(t, ok)
	require.Equal(t, int64(7), v.(value.Int).V)
}
