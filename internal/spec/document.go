package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/buger/jsonparser"
	orderedmap "github.com/pb33f/ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Object is a JSON/YAML mapping that remembers the order its keys were
// first set in. Raw documents are parsed into Objects so that properties,
// paths and responses are walked in source order, and synthesized examples
// use it to serialize fields in declaration order.
//
// All accessors are safe on a nil *Object and report absence.
type Object struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{m: newOrderedMap()}
}

func newOrderedMap() *orderedmap.OrderedMap[string, any] {
	return orderedmap.New[string, any](orderedmap.WithDisableHTMLEscape[string, any]())
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if o.m == nil {
		o.m = newOrderedMap()
	}
	o.m.Set(key, v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil || o.m == nil {
		return nil, false
	}
	return o.m.Get(key)
}

// Has reports whether key is present, even with a null value.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil || o.m == nil {
		return nil
	}
	return slices.Collect(o.m.KeysFromOldest())
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	out := NewObject()
	if o == nil || o.m == nil {
		return out
	}
	for k, v := range o.m.FromOldest() {
		out.m.Set(k, v)
	}
	return out
}

// String returns the value under key rendered as a string. Scalars other
// than strings are formatted; containers and missing keys yield "".
func (o *Object) String(key string) string {
	v, _ := o.Get(key)
	return scalarString(v)
}

// Object returns the nested mapping under key, or nil.
func (o *Object) Object(key string) *Object {
	v, _ := o.Get(key)
	obj, _ := v.(*Object)
	return obj
}

// List returns the sequence under key, or nil.
func (o *Object) List(key string) []any {
	v, _ := o.Get(key)
	list, _ := v.([]any)
	return list
}

// Strings returns the string elements of the sequence under key.
func (o *Object) Strings(key string) []string {
	list := o.List(key)
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s := scalarString(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Bool returns the boolean under key and whether it was a boolean.
func (o *Object) Bool(key string) (bool, bool) {
	v, _ := o.Get(key)
	b, ok := v.(bool)
	return b, ok
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *Object, []any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// MarshalJSON encodes the mapping with keys in insertion order and HTML
// characters left unescaped.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	if o.m == nil {
		return []byte("{}"), nil
	}
	return o.m.MarshalJSON()
}

// MarshalYAML encodes the mapping as an ordered yaml.v3 mapping node. The
// ordered map's own MarshalYAML targets yaml/v4 nodes, which yaml.v3 cannot
// encode.
func (o *Object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if o == nil || o.m == nil {
		return node, nil
	}
	for k, v := range o.m.FromOldest() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(v); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseDocument parses JSON or YAML text into an ordered value tree. The
// root must be a mapping. Text starting with '{' is read as JSON first and
// falls back to YAML flow syntax.
func ParseDocument(data []byte) (*Object, error) {
	if looksLikeJSON(data) {
		if obj, err := parseJSON(data); err == nil {
			return obj, nil
		}
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse document: %v", err), Cause: err}
	}
	if root.Kind == 0 {
		return nil, &SpecError{Code: ParseError, Message: "parse document: empty input"}
	}
	v, err := nodeValue(&root, 0)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse document: %v", err), Cause: err}
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse document: root is %T, want an object", v)}
	}
	return obj, nil
}

func looksLikeJSON(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '{'
}

func parseJSON(data []byte) (*Object, error) {
	raw, vt, _, err := jsonparser.Get(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if err != nil {
		return nil, err
	}
	if vt != jsonparser.Object {
		return nil, fmt.Errorf("root is %s, want an object", vt)
	}
	v, err := jsonValue(raw, vt, 0)
	if err != nil {
		return nil, err
	}
	return v.(*Object), nil
}

const maxNodeDepth = 512

func nodeValue(n *yaml.Node, depth int) (any, error) {
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("document nested deeper than %d levels", maxNodeDepth)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0], depth+1)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return nodeValue(n.Alias, depth+1)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, nil
	}
}

func jsonValue(data []byte, vt jsonparser.ValueType, depth int) (any, error) {
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("document nested deeper than %d levels", maxNodeDepth)
	}
	switch vt {
	case jsonparser.String:
		return jsonparser.ParseString(data)
	case jsonparser.Number:
		if n, err := jsonparser.ParseInt(data); err == nil {
			return int(n), nil
		}
		return jsonparser.ParseFloat(data)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(data)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(data, func(key, value []byte, t jsonparser.ValueType, _ int) error {
			v, err := jsonValue(value, t, depth+1)
			if err != nil {
				return err
			}
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	case jsonparser.Array:
		list := []any{}
		var inner error
		_, err := jsonparser.ArrayEach(data, func(value []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			v, err := jsonValue(value, t, depth+1)
			if err != nil {
				inner = err
				return
			}
			list = append(list, v)
		})
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return nil, inner
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected json value %q", data)
	}
}
