package spec

import (
	"bytes"
	"encoding/json"
)

// Synthesizer derives a representative example value from a normalized
// schema. It never fails: shapes it does not understand become nil or an
// empty container.
type Synthesizer struct {
	// SamplePrimitiveArrays makes an array of unreferenced primitive items
	// yield one placeholder element instead of an empty array.
	SamplePrimitiveArrays bool
}

// maxExampleDepth bounds nesting of synthesized values.
const maxExampleDepth = 64

// Synthesize derives an example with the default Synthesizer.
func Synthesize(t SchemaType, attr *ModelAttr) any {
	return Synthesizer{}.Synthesize(t, attr)
}

// Synthesize derives an example for a value of type t described by attr,
// which may be nil. Objects are returned as *Object so that fields keep
// their declaration order.
func (s Synthesizer) Synthesize(t SchemaType, attr *ModelAttr) any {
	return s.value(t, attr, 0)
}

func (s Synthesizer) value(t SchemaType, attr *ModelAttr, depth int) any {
	if depth > maxExampleDepth {
		return nil
	}
	switch v := t.(type) {
	case Primitive:
		if Render(v) == "object" {
			return s.object(attr, depth)
		}
		return primitiveExample(v)
	case ArrayOf:
		if attr != nil && len(attr.Properties) > 0 {
			return []any{s.object(attr, depth)}
		}
		if p, ok := v.Elem.(Primitive); ok && s.SamplePrimitiveArrays {
			return []any{s.value(p, nil, depth+1)}
		}
		return []any{}
	case ObjectRef, InlineObject:
		return s.object(attr, depth)
	case MapOf:
		obj := NewObject()
		entry := attr.Property(DictionaryKey)
		valueType := v.Value
		if entry != nil {
			valueType = entry.Type
		}
		obj.Set(DictionaryKey, s.value(valueType, entry, depth+1))
		return obj
	default:
		return nil
	}
}

func (s Synthesizer) object(attr *ModelAttr, depth int) any {
	obj := NewObject()
	if attr == nil {
		return obj
	}
	if len(attr.Properties) == 0 && attr.Example != nil {
		return attr.Example
	}
	for _, p := range attr.Properties {
		obj.Set(p.Name, s.value(p.Type, p, depth+1))
	}
	return obj
}

// primitiveExample maps a primitive's display tag to its placeholder.
func primitiveExample(p Primitive) any {
	switch Render(p) {
	case "string":
		return "string"
	case "string(date-time)":
		return "2020/01/01 00:00:00"
	case "integer", "integer(int32)", "integer(int64)":
		return 0
	case "number":
		return 0
	case "boolean":
		return true
	case "file":
		return "(binary)"
	default:
		return nil
	}
}

// MarshalExample renders an example as two-space indented JSON. A nil
// value or one that cannot be encoded yields "".
func MarshalExample(v any) string {
	if v == nil {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
