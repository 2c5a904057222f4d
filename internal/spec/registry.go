package spec

import "strings"

// DefinitionsPrefix is the fixed prefix of a local definition reference.
const DefinitionsPrefix = "#/definitions/"

// RefName returns the definition name of a "#/definitions/<Name>"
// reference. Any other string is returned unchanged.
func RefName(ref string) string {
	if strings.HasPrefix(ref, DefinitionsPrefix) {
		return ref[len(DefinitionsPrefix):]
	}
	return ref
}

func refKey(refOrName string) string {
	return DefinitionsPrefix + RefName(refOrName)
}

// Registry resolves references against one document's definitions table.
// Every resolved definition is memoized under its "#/definitions/<Name>"
// key, so all referencing sites share one *ModelAttr. A Registry is built
// per document and is not safe for concurrent use.
type Registry struct {
	definitions *Object
	models      map[string]*ModelAttr
	logger      Logger
}

// NewRegistry returns an empty registry over a raw definitions mapping,
// which may be nil.
func NewRegistry(definitions *Object) *Registry {
	return &Registry{
		definitions: definitions,
		models:      make(map[string]*ModelAttr),
		logger:      NopLogger{},
	}
}

// Lookup returns the memoized entry for a reference without resolving it.
func (r *Registry) Lookup(refOrName string) (*ModelAttr, bool) {
	m, ok := r.models[refKey(refOrName)]
	return m, ok
}

// Len returns the number of memoized entries, including nil ones.
func (r *Registry) Len() int { return len(r.models) }

// ResolveAll resolves every definition in document order.
func (r *Registry) ResolveAll() {
	for _, name := range r.definitions.Keys() {
		r.Resolve(name)
	}
}

// Resolve returns the model for a "#/definitions/<Name>" reference or a
// bare definition name. An entry that is already in progress or resolved is
// returned as is; this is what terminates cyclic references, at the cost of
// the back-reference seeing whatever properties exist so far (none).
//
// A definition without properties, map-shaped additionalProperties or a
// usable allOf resolves to nil, meaning no further structure is available.
func (r *Registry) Resolve(refOrName string) *ModelAttr {
	key := refKey(refOrName)
	if m, ok := r.models[key]; ok && (m == nil || m.State != Unresolved) {
		return m
	}

	name := RefName(refOrName)
	def := r.definitions.Object(name)
	props := def.Object("properties")
	addl := def.Object("additionalProperties")
	allOf := def.List("allOf")
	if props.Len() == 0 && addl == nil && !usableAllOf(allOf) {
		if def == nil {
			r.logger.Debug("reference to unknown definition", "ref", key)
		}
		r.models[key] = nil
		return nil
	}

	m := &ModelAttr{Type: ObjectRef{Name: name}}
	r.models[key] = m
	m.State = InProgress

	raw := props.Clone()
	if addl != nil {
		raw.Set(DictionaryKey, addl)
	}
	attrs := r.Normalize(raw)
	attrs = r.mergeInto(attrs, allOf)

	m.Title = def.String("title")
	m.Description = def.String("description")
	if len(attrs) == 0 {
		m.Example, _ = def.Get("example")
	}
	if req, ok := def.Bool("required"); ok {
		m.Required = req
	} else {
		markRequired(attrs, def)
	}
	m.Properties = attrs
	m.State = Resolved
	return m
}

// markRequired flags the attrs named by schema's "required" list.
func markRequired(attrs []*ModelAttr, schema *Object) {
	names := schema.Strings("required")
	if len(names) == 0 || len(attrs) == 0 {
		return
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	for _, a := range attrs {
		if _, ok := set[a.Name]; ok {
			a.Required = true
		}
	}
}

func usableAllOf(fragments []any) bool {
	for _, f := range fragments {
		frag, ok := f.(*Object)
		if !ok {
			continue
		}
		if frag.String("$ref") != "" || frag.Has("properties") {
			return true
		}
	}
	return false
}
