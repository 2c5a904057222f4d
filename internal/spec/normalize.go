package spec

// Normalize converts a raw property mapping into ModelAttrs, preserving the
// mapping's order. Referenced models are resolved through the registry and
// their property lists are shared with the referencing node, not copied.
func (r *Registry) Normalize(properties *Object) []*ModelAttr {
	if properties.Len() == 0 {
		return nil
	}
	attrs := make([]*ModelAttr, 0, properties.Len())
	for _, name := range properties.Keys() {
		attrs = append(attrs, r.property(name, properties.Object(name)))
	}
	return attrs
}

// property normalizes a single schema fragment. A nil fragment becomes the
// generic object primitive.
func (r *Registry) property(name string, schema *Object) *ModelAttr {
	attr := &ModelAttr{
		Name:        name,
		Type:        typeOf(schema),
		Description: schema.String("description"),
		State:       Resolved,
	}

	switch t := attr.Type.(type) {
	case ObjectRef:
		r.adopt(attr, t.Name)
	case ArrayOf:
		if ref, ok := t.Elem.(ObjectRef); ok {
			r.adopt(attr, ref.Name)
		}
	case MapOf:
		entry := NewObject()
		entry.Set(DictionaryKey, schema.Object("additionalProperties"))
		attr.Properties = r.Normalize(entry)
	case InlineObject:
		attrs := r.Normalize(schema.Object("properties"))
		markRequired(attrs, schema)
		attr.Properties = r.mergeInto(attrs, schema.List("allOf"))
	}
	return attr
}

// adopt points attr at the property list of the named model. Only a
// definition's own example carries over; inline examples are ignored.
func (r *Registry) adopt(attr *ModelAttr, name string) {
	m := r.Resolve(name)
	if m == nil {
		return
	}
	attr.Properties = m.Properties
	if attr.Example == nil {
		attr.Example = m.Example
	}
}
