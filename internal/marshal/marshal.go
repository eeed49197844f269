// Package marshal implements naab's cross-language value marshaller (spec
// §4.8): converting between internal/value.Value and each foreign runtime's
// native representation. The subprocess executor's JSON wire column is the
// concrete conversion built here, including FromJSON's struct-definition
// lookup that reconstructs a tagged object as a typed *value.Struct. The
// embedded, JIT, and native executors convert against their own host
// representation directly (reflection, goja.Value, and plain interface{}
// values passed to a Go plugin's entry point respectively) and have no
// struct-registry lookup, so a struct value they return never comes back as
// a typed *value.Struct (see DESIGN.md). ValidateStructFields is the §4.8
// required-field check used by internal/eval's struct-literal evaluation.
package marshal

import (
	"strconv"
	"strings"

	nerrors "github.com/sunholo/naab/internal/errors"
	"github.com/sunholo/naab/internal/value"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MaxPayloadBytes and MaxNestingDepth are the §4.8 "caps total serialized
// payload size... and maximum nesting depth" requirement; the spec leaves
// both unspecified numerically, so these mirror the §6 source-file cap and
// the §6 parse-tree-depth cap respectively (documented as an Open Question
// decision in DESIGN.md).
const (
	MaxPayloadBytes = 10 << 20
	MaxNestingDepth = 1000
)

// TypeTagKey is the JSON field the marshaller adds to a struct's object
// representation so the subprocess protocol's "tagged JSON object" (§4.8)
// round-trips back to the right StructDef on the way in.
const TypeTagKey = "__type"

// ToJSON serializes v for the subprocess executor's stdout/stdin wire
// protocol (§4.7/§6), building the document incrementally with sjson so
// arbitrarily nested List/Dict/Struct values compose without a full
// native-struct intermediate representation.
func ToJSON(v value.Value) (string, *nerrors.NaabError) {
	doc, err := toJSON(v, 0)
	if err != nil {
		return "", err
	}
	if len(doc) > MaxPayloadBytes {
		return "", nerrors.NewError(nerrors.EMarshal, "marshal", "serialized payload exceeds the maximum size cap")
	}
	return doc, nil
}

func toJSON(v value.Value, depth int) (string, *nerrors.NaabError) {
	if depth > MaxNestingDepth {
		return "", nerrors.NewError(nerrors.EMarshal, "marshal", "value nesting exceeds the maximum depth cap")
	}
	switch x := v.(type) {
	case value.Null:
		return "null", nil
	case value.Bool:
		return strconv.FormatBool(x.V), nil
	case value.Int:
		return strconv.FormatInt(x.V, 10), nil
	case value.Float:
		return strconv.FormatFloat(x.V, 'g', -1, 64), nil
	case value.String:
		return strconv.Quote(x.V), nil
	case *value.List:
		doc := "[]"
		for i, elem := range x.Elements {
			child, err := toJSON(elem, depth+1)
			if err != nil {
				return "", err
			}
			var serr error
			doc, serr = sjson.SetRaw(doc, strconv.Itoa(i), child)
			if serr != nil {
				return "", nerrors.NewError(nerrors.EMarshal, "marshal", "failed to append list element: "+serr.Error())
			}
		}
		return doc, nil
	case *value.Dict:
		doc := "{}"
		for _, k := range x.Keys() {
			elem, _ := x.Get(k)
			child, err := toJSON(elem, depth+1)
			if err != nil {
				return "", err
			}
			var serr error
			doc, serr = sjson.SetRaw(doc, sjsonPath(k), child)
			if serr != nil {
				return "", nerrors.NewError(nerrors.EMarshal, "marshal", "failed to append dict entry: "+serr.Error())
			}
		}
		return doc, nil
	case *value.Struct:
		doc := "{}"
		var serr error
		doc, serr = sjson.Set(doc, TypeTagKey, x.Def.Name)
		if serr != nil {
			return "", nerrors.NewError(nerrors.EMarshal, "marshal", "failed to tag struct type: "+serr.Error())
		}
		for i, name := range x.Def.FieldName {
			child, err := toJSON(x.Fields[i], depth+1)
			if err != nil {
				return "", err
			}
			doc, serr = sjson.SetRaw(doc, sjsonPath(name), child)
			if serr != nil {
				return "", nerrors.NewError(nerrors.EMarshal, "marshal", "failed to append struct field: "+serr.Error())
			}
		}
		return doc, nil
	default:
		return "", nerrors.NewError(nerrors.EMarshal, "marshal", "no JSON representation for "+v.Type()+" values")
	}
}

// sjsonPath escapes a dict/struct key so a literal "." or "\" in the key
// isn't read back as sjson's own nested-path separator.
func sjsonPath(key string) string {
	key = strings.ReplaceAll(key, "\\", "\\\\")
	key = strings.ReplaceAll(key, ".", "\\.")
	return key
}

// FromJSON parses doc and rebuilds a Value tree, consulting structDefs to
// reconstruct any object carrying a TypeTagKey into a typed *value.Struct
// rather than a plain Dict (the inverse of ToJSON's struct tagging).
func FromJSON(doc string, structDefs map[string]*value.StructDef) (value.Value, *nerrors.NaabError) {
	if len(doc) > MaxPayloadBytes {
		return nil, nerrors.NewError(nerrors.EMarshal, "marshal", "incoming payload exceeds the maximum size cap")
	}
	if !gjson.Valid(doc) {
		return nil, nerrors.NewError(nerrors.EMarshal, "marshal", "foreign process returned invalid JSON")
	}
	return fromJSON(gjson.Parse(doc), structDefs, 0)
}

func fromJSON(r gjson.Result, structDefs map[string]*value.StructDef, depth int) (value.Value, *nerrors.NaabError) {
	if depth > MaxNestingDepth {
		return nil, nerrors.NewError(nerrors.EMarshal, "marshal", "incoming value nesting exceeds the maximum depth cap")
	}
	switch r.Type {
	case gjson.Null:
		return value.NullValue, nil
	case gjson.True, gjson.False:
		return value.Bool{V: r.Bool()}, nil
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return value.Int{V: int64(r.Num)}, nil
		}
		return value.Float{V: r.Num}, nil
	case gjson.String:
		return value.String{V: r.Str}, nil
	case gjson.JSON:
		if r.IsArray() {
			lst := &value.List{}
			var ferr *nerrors.NaabError
			r.ForEach(func(_, elem gjson.Result) bool {
				v, err := fromJSON(elem, structDefs, depth+1)
				if err != nil {
					ferr = err
					return false
				}
				lst.Elements = append(lst.Elements, v)
				return true
			})
			if ferr != nil {
				return nil, ferr
			}
			return lst, nil
		}
		if typeName := r.Get(TypeTagKey); typeName.Exists() {
			if def, ok := structDefs[typeName.String()]; ok {
				return fromJSONStruct(r, def, structDefs, depth)
			}
		}
		d := value.NewDict()
		var ferr *nerrors.NaabError
		r.ForEach(func(key, elem gjson.Result) bool {
			if key.String() == TypeTagKey {
				return true
			}
			v, err := fromJSON(elem, structDefs, depth+1)
			if err != nil {
				ferr = err
				return false
			}
			d.Set(key.String(), v)
			return true
		})
		if ferr != nil {
			return nil, ferr
		}
		return d, nil
	default:
		return value.NullValue, nil
	}
}

func fromJSONStruct(r gjson.Result, def *value.StructDef, structDefs map[string]*value.StructDef, depth int) (value.Value, *nerrors.NaabError) {
	fields := make([]value.Value, len(def.FieldName))
	for i, name := range def.FieldName {
		fv := r.Get(sjsonPath(name))
		if !fv.Exists() {
			return nil, nerrors.NewError(nerrors.EStructField, "marshal", "missing required field '"+name+"' for struct "+def.Name)
		}
		v, err := fromJSON(fv, structDefs, depth+1)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}
	return &value.Struct{Def: def, Fields: fields}, nil
}

// ValidateStructFields checks the field names in provided against def
// (§4.8: missing required fields, those without a default among hasDefault,
// and unknown fields raise E_STRUCT_FIELD). Called by internal/eval's
// struct-literal evaluation; no executor adapter calls it.
func ValidateStructFields(def *value.StructDef, provided map[string]bool, hasDefault map[string]bool) *nerrors.NaabError {
	for _, name := range def.FieldName {
		if provided[name] {
			continue
		}
		if hasDefault[name] {
			continue
		}
		return nerrors.NewError(nerrors.EStructField, "marshal", "missing required field '"+name+"' for struct "+def.Name)
	}
	for name := range provided {
		if _, ok := def.FieldIdx[name]; !ok {
			return nerrors.NewError(nerrors.EStructField, "marshal", "unknown field '"+name+"' for struct "+def.Name)
		}
	}
	return nil
}

// CoerceInt implements the §4.8 "Float -> Int" overflow rule: a Float
// converts to Int only when it has no fractional component, otherwise the
// conversion raises E_MARSHAL_OVERFLOW rather than silently truncating.
func CoerceInt(v value.Value) (int64, *nerrors.NaabError) {
	switch x := v.(type) {
	case value.Int:
		return x.V, nil
	case value.Float:
		i := int64(x.V)
		if float64(i) != x.V {
			return 0, nerrors.NewError(nerrors.EMarshalOverflow, "marshal", "float value has a fractional component and cannot convert to int without loss")
		}
		return i, nil
	default:
		return 0, nerrors.NewError(nerrors.EMarshal, "marshal", "cannot coerce "+v.Type()+" to int")
	}
}
