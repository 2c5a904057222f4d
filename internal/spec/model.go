package spec

import "sort"

// Model definitions produced by the extractor and consumed by renderers.

// ResolutionState tracks a registry entry through reference resolution.
type ResolutionState int

const (
	Unresolved ResolutionState = iota
	// InProgress entries are visible to back-references before their
	// property list is final; a cyclic reference sees no properties.
	InProgress
	Resolved
)

func (s ResolutionState) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Resolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

// DictionaryKey is the synthetic property name standing for the keys of a
// map-shaped schema.
const DictionaryKey = "dictionary key (*)"

// ModelAttr is a node in the normalized schema tree.
type ModelAttr struct {
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Title       string          `json:"title,omitempty" yaml:"title,omitempty"`
	Type        SchemaType      `json:"-" yaml:"-"`
	Description string          `json:"description" yaml:"description"`
	Required    bool            `json:"required" yaml:"required"`
	Properties  []*ModelAttr    `json:"properties,omitempty" yaml:"properties,omitempty"`
	Example     any             `json:"example,omitempty" yaml:"example,omitempty"`
	State       ResolutionState `json:"-" yaml:"-"`
}

// TypeTag returns the compact display tag of the node's type.
func (m *ModelAttr) TypeTag() string {
	if m == nil {
		return ""
	}
	return Render(m.Type)
}

// Property returns the direct child named name, or nil.
func (m *ModelAttr) Property(name string) *ModelAttr {
	if m == nil {
		return nil
	}
	for _, p := range m.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// MarshalJSON adds the rendered type tag.
func (m *ModelAttr) MarshalJSON() ([]byte, error) {
	type alias ModelAttr
	return encodeJSON(struct {
		Type string `json:"type"`
		alias
	}{Type: Render(m.Type), alias: alias(*m)})
}

// MarshalYAML adds the rendered type tag.
func (m *ModelAttr) MarshalYAML() (any, error) {
	type alias ModelAttr
	return struct {
		Type  string `yaml:"type"`
		alias `yaml:",inline"`
	}{Type: Render(m.Type), alias: alias(*m)}, nil
}

// ParamLocation is where a request parameter is carried.
type ParamLocation string

const (
	InPath     ParamLocation = "path"
	InQuery    ParamLocation = "query"
	InBody     ParamLocation = "body"
	InHeader   ParamLocation = "header"
	InFormData ParamLocation = "formData"
)

// Request describes one operation parameter.
type Request struct {
	Name        string        `json:"name" yaml:"name"`
	Type        SchemaType    `json:"-" yaml:"-"`
	In          ParamLocation `json:"in" yaml:"in"`
	Required    bool          `json:"required" yaml:"required"`
	Description string        `json:"description" yaml:"description"`
	Model       *ModelAttr    `json:"model,omitempty" yaml:"model,omitempty"`
}

// MarshalJSON adds the rendered type tag.
func (r Request) MarshalJSON() ([]byte, error) {
	type alias Request
	return encodeJSON(struct {
		Type string `json:"type"`
		alias
	}{Type: Render(r.Type), alias: alias(r)})
}

// MarshalYAML adds the rendered type tag.
func (r Request) MarshalYAML() (any, error) {
	type alias Request
	return struct {
		Type  string `yaml:"type"`
		alias `yaml:",inline"`
	}{Type: Render(r.Type), alias: alias(r)}, nil
}

// Response describes one status code of an operation.
type Response struct {
	StatusCode      string `json:"statusCode" yaml:"statusCode"`
	Description     string `json:"description" yaml:"description"`
	ReferencedModel string `json:"referencedModel,omitempty" yaml:"referencedModel,omitempty"`
}

// Table is the documentation record of a single operation.
type Table struct {
	Title                string     `json:"title" yaml:"title"`
	Tag                  string     `json:"tag" yaml:"tag"`
	Summary              string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	URL                  string     `json:"url" yaml:"url"`
	Description          string     `json:"description" yaml:"description"`
	RequestContentTypes  string     `json:"requestForm" yaml:"requestForm"`
	ResponseContentTypes string     `json:"responseForm" yaml:"responseForm"`
	Method               string     `json:"requestType" yaml:"requestType"`
	Deprecated           bool       `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	PathParams           []Request  `json:"pathList" yaml:"pathList"`
	QueryParams          []Request  `json:"queryList" yaml:"queryList"`
	BodyParams           []Request  `json:"bodyList" yaml:"bodyList"`
	HeaderParams         []Request  `json:"headerList,omitempty" yaml:"headerList,omitempty"`
	FormParams           []Request  `json:"formDataList,omitempty" yaml:"formDataList,omitempty"`
	Responses            []Response `json:"responseList" yaml:"responseList"`
	RequestExample       string     `json:"requestParam" yaml:"requestParam"`
	ResponseExample      string     `json:"responseParam" yaml:"responseParam"`
	ResponseType         SchemaType `json:"-" yaml:"-"`
	ResponseModel        *ModelAttr `json:"modelAttr,omitempty" yaml:"modelAttr,omitempty"`
}

// MarshalJSON adds the rendered response type tag.
func (t Table) MarshalJSON() ([]byte, error) {
	type alias Table
	return encodeJSON(struct {
		ResponseType string `json:"responseType,omitempty"`
		alias
	}{ResponseType: Render(t.ResponseType), alias: alias(t)})
}

// MarshalYAML adds the rendered response type tag.
func (t Table) MarshalYAML() (any, error) {
	type alias Table
	return struct {
		ResponseType string `yaml:"responseType,omitempty"`
		alias        `yaml:",inline"`
	}{ResponseType: Render(t.ResponseType), alias: alias(t)}, nil
}

// Group is the set of tables sharing one title (the operation's first tag).
type Group struct {
	Title  string
	Tables []Table
}

// Result is the output of extracting one document.
type Result struct {
	Tables map[string][]Table `json:"tableMap" yaml:"tableMap"`
	Info   any                `json:"info,omitempty" yaml:"info,omitempty"`
}

// Groups returns the table groups sorted by title.
func (r *Result) Groups() []Group {
	if r == nil || len(r.Tables) == 0 {
		return nil
	}
	titles := make([]string, 0, len(r.Tables))
	for t := range r.Tables {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	out := make([]Group, 0, len(titles))
	for _, t := range titles {
		out = append(out, Group{Title: t, Tables: r.Tables[t]})
	}
	return out
}

// Len returns the number of tables across all groups.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, ts := range r.Tables {
		n += len(ts)
	}
	return n
}

// Title returns info.title when present.
func (r *Result) Title() string {
	if r == nil {
		return ""
	}
	info, _ := r.Info.(*Object)
	return info.String("title")
}

func emptyResult() *Result {
	return &Result{Tables: map[string][]Table{}}
}
