package spec

// SchemaType is the normalized shape of a schema fragment. It is a closed
// set: Primitive, ArrayOf, ObjectRef, MapOf and InlineObject.
type SchemaType interface {
	isSchemaType()
}

// Primitive is a scalar type such as string or integer(int64). A fragment
// without a type is the generic "object" primitive.
type Primitive struct {
	Name   string
	Format string
}

// ArrayOf is an array. Elem is nil when the items carry no type.
type ArrayOf struct {
	Elem SchemaType
}

// ObjectRef names a definition from the document's definitions table.
type ObjectRef struct {
	Name string
}

// MapOf is an object with map-shaped additionalProperties.
type MapOf struct {
	Value SchemaType
}

// InlineObject is an object whose properties are declared in place.
type InlineObject struct{}

func (Primitive) isSchemaType()    {}
func (ArrayOf) isSchemaType()      {}
func (ObjectRef) isSchemaType()    {}
func (MapOf) isSchemaType()        {}
func (InlineObject) isSchemaType() {}

// Generic object primitive used when a fragment declares no type.
var objectPrimitive = Primitive{Name: "object"}

// Render returns the compact display tag for t, e.g. "integer(int64)",
// "array:Pet", "array:string" or "object".
func Render(t SchemaType) string {
	switch v := t.(type) {
	case Primitive:
		if v.Format != "" {
			return v.Name + "(" + v.Format + ")"
		}
		return v.Name
	case ArrayOf:
		switch e := v.Elem.(type) {
		case ObjectRef:
			return "array:" + e.Name
		case Primitive:
			return "array:" + e.Name
		default:
			return "array"
		}
	case ObjectRef:
		return "object:" + v.Name
	case MapOf, InlineObject:
		return "object"
	default:
		return ""
	}
}

// typeOf derives the SchemaType of a raw schema fragment without resolving
// anything. A direct $ref wins over items; items make an array; map-shaped
// additionalProperties make a map; inline properties or allOf make an inline
// object.
func typeOf(schema *Object) SchemaType {
	if ref := schema.String("$ref"); ref != "" {
		return ObjectRef{Name: RefName(ref)}
	}
	typ := schema.String("type")
	if items := schema.Object("items"); items != nil || typ == "array" {
		return ArrayOf{Elem: itemType(items)}
	}
	if addl := schema.Object("additionalProperties"); addl != nil {
		return MapOf{Value: typeOf(addl)}
	}
	if schema.Object("properties").Len() > 0 || len(schema.List("allOf")) > 0 {
		return InlineObject{}
	}
	if typ == "" {
		return objectPrimitive
	}
	return Primitive{Name: typ, Format: schema.String("format")}
}

func itemType(items *Object) SchemaType {
	if items == nil {
		return nil
	}
	if ref := items.String("$ref"); ref != "" {
		return ObjectRef{Name: RefName(ref)}
	}
	if typ := items.String("type"); typ != "" {
		return Primitive{Name: typ, Format: items.String("format")}
	}
	return nil
}
