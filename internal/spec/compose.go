package spec

// Merge composes allOf fragments into one property list. Fragments are
// applied in order; a property whose name already exists replaces the
// earlier one in place, otherwise it is appended.
func (r *Registry) Merge(fragments []any) []*ModelAttr {
	return r.mergeInto(nil, fragments)
}

// mergeInto applies fragments on top of acc, which must be owned by the
// caller. Properties taken from a referenced model are copied node by node
// so the shared registry entry is never modified.
func (r *Registry) mergeInto(acc []*ModelAttr, fragments []any) []*ModelAttr {
	for _, f := range fragments {
		frag, ok := f.(*Object)
		if !ok {
			continue
		}
		if ref := frag.String("$ref"); ref != "" {
			m := r.Resolve(ref)
			if m == nil {
				continue
			}
			for _, p := range m.Properties {
				cp := *p
				acc = upsert(acc, &cp)
			}
			continue
		}
		if props := frag.Object("properties"); props != nil {
			attrs := r.Normalize(props)
			markRequired(attrs, frag)
			for _, p := range attrs {
				acc = upsert(acc, p)
			}
		}
	}
	return acc
}

func upsert(acc []*ModelAttr, p *ModelAttr) []*ModelAttr {
	for i, existing := range acc {
		if existing.Name == p.Name {
			acc[i] = p
			return acc
		}
	}
	return append(acc, p)
}
