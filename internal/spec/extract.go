package spec

import (
	"strings"
)

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// DefaultTitle groups operations that declare no tags.
const DefaultTitle = "default"

const (
	parametersPrefix = "#/parameters/"
	responsesPrefix  = "#/responses/"
)

var defaultMediaTypes = []string{"application/json"}

// ExtractOption configures how tables are extracted from a document.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	synth       Synthesizer
	logger      Logger
}

func newExtractConfig(opts []ExtractOption) *extractConfig {
	cfg := &extractConfig{logger: NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) ExtractOption {
	return func(c *extractConfig) {
		for _, m := range methods {
			m = HttpMethod(strings.ToLower(strings.TrimSpace(string(m))))
			if m == "" {
				continue
			}
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithSamplePrimitiveArrays makes examples of primitive arrays carry one
// placeholder element.
func WithSamplePrimitiveArrays(enabled bool) ExtractOption {
	return func(c *extractConfig) { c.synth.SamplePrimitiveArrays = enabled }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l Logger) ExtractOption {
	return func(c *extractConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

type extractor struct {
	doc      *Object
	reg      *Registry
	cfg      *extractConfig
	basePath string
	consumes []string
	produces []string
}

// Extract turns a parsed Swagger 2.0 document into documentation tables
// grouped by their first tag. Definitions are resolved up front in document
// order; missing optional sections are treated as empty.
func Extract(doc *Object, opts ...ExtractOption) *Result {
	cfg := newExtractConfig(opts)
	res := emptyResult()
	if doc == nil {
		return res
	}
	res.Info, _ = doc.Get("info")

	reg := NewRegistry(doc.Object("definitions"))
	reg.logger = cfg.logger
	reg.ResolveAll()

	x := &extractor{
		doc:      doc,
		reg:      reg,
		cfg:      cfg,
		basePath: doc.String("basePath"),
		consumes: orDefault(doc.Strings("consumes"), defaultMediaTypes),
		produces: orDefault(doc.Strings("produces"), defaultMediaTypes),
	}

	paths := doc.Object("paths")
	var tables []Table
	for _, p := range paths.Keys() {
		tables = append(tables, x.pathTables(p, paths.Object(p))...)
	}
	res.Tables = groupByTitle(tables)
	cfg.logger.Debug("extracted tables", "definitions", reg.Len(), "tables", len(tables), "groups", len(res.Tables))
	return res
}

func (x *extractor) pathTables(path string, item *Object) []Table {
	url := x.basePath + path
	common := item.List("parameters")

	var out []Table
	for _, method := range item.Keys() {
		if method == "parameters" || strings.HasPrefix(method, "x-") {
			continue
		}
		op := item.Object(method)
		if op == nil {
			continue
		}
		if !x.allowMethod(method) {
			continue
		}
		tags := op.Strings("tags")
		if !x.allowByTags(tags) {
			continue
		}
		out = append(out, x.table(url, method, tags, op, common))
	}
	return out
}

func (x *extractor) table(url, method string, tags []string, op *Object, common []any) Table {
	title := DefaultTitle
	if len(tags) > 0 {
		title = tags[0]
	}
	description := op.String("description")
	tag := op.String("operationId")
	if tag == "" {
		tag = description
	}

	t := Table{
		Title:                title,
		Tag:                  tag,
		Summary:              op.String("summary"),
		URL:                  url,
		Description:          description,
		RequestContentTypes:  strings.Join(orDefault(op.Strings("consumes"), x.consumes), ","),
		ResponseContentTypes: strings.Join(orDefault(op.Strings("produces"), x.produces), ","),
		Method:               method,
		PathParams:           []Request{},
		QueryParams:          []Request{},
		BodyParams:           []Request{},
	}
	t.Deprecated, _ = op.Bool("deprecated")

	for _, p := range x.parameters(op.List("parameters"), common) {
		req := x.request(p)
		switch req.In {
		case InPath:
			t.PathParams = append(t.PathParams, req)
		case InQuery:
			t.QueryParams = append(t.QueryParams, req)
		case InBody:
			t.BodyParams = append(t.BodyParams, req)
		case InHeader:
			t.HeaderParams = append(t.HeaderParams, req)
		case InFormData:
			t.FormParams = append(t.FormParams, req)
		default:
			x.cfg.logger.Debug("skipping parameter with unknown location", "url", url, "method", method, "name", req.Name, "in", req.In)
		}
	}

	responses := op.Object("responses")
	t.Responses = x.responses(responses)
	if ok := x.deref(responses.Object("200"), responsesPrefix, "responses"); ok != nil {
		if schema := ok.Object("schema"); schema != nil {
			t.ResponseType, t.ResponseModel = x.schemaModel(schema)
		}
	}

	t.RequestExample = x.requestExample(t.BodyParams)
	if t.ResponseModel != nil {
		t.ResponseExample = MarshalExample(x.cfg.synth.Synthesize(t.ResponseType, t.ResponseModel))
	}
	return t
}

// parameters combines operation parameters with the path-level ones. Path
// parameters that the operation redeclares (same in and name) are dropped.
func (x *extractor) parameters(method, common []any) []*Object {
	out := make([]*Object, 0, len(method)+len(common))
	seen := make(map[string]struct{}, len(method))
	for _, raw := range method {
		p := x.deref(asObject(raw), parametersPrefix, "parameters")
		if p == nil {
			continue
		}
		seen[paramKey(p.String("in"), p.String("name"))] = struct{}{}
		out = append(out, p)
	}
	for _, raw := range common {
		p := x.deref(asObject(raw), parametersPrefix, "parameters")
		if p == nil {
			continue
		}
		if _, dup := seen[paramKey(p.String("in"), p.String("name"))]; dup {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (x *extractor) request(p *Object) Request {
	req := Request{
		Name:        p.String("name"),
		In:          ParamLocation(p.String("in")),
		Description: p.String("description"),
	}
	req.Required, _ = p.Bool("required")
	if req.In == InBody {
		req.Type, req.Model = x.schemaModel(p.Object("schema"))
		return req
	}
	req.Type = typeOf(p)
	return req
}

// schemaModel resolves a body or response schema. Named references return
// the shared registry model; inline shapes get a fresh node.
func (x *extractor) schemaModel(schema *Object) (SchemaType, *ModelAttr) {
	t := typeOf(schema)
	switch v := t.(type) {
	case ObjectRef:
		return t, x.reg.Resolve(v.Name)
	case ArrayOf:
		if ref, ok := v.Elem.(ObjectRef); ok {
			return t, x.reg.Resolve(ref.Name)
		}
		return t, x.reg.property("", schema)
	default:
		return t, x.reg.property("", schema)
	}
}

func (x *extractor) responses(responses *Object) []Response {
	out := make([]Response, 0, responses.Len())
	for _, code := range responses.Keys() {
		r := x.deref(responses.Object(code), responsesPrefix, "responses")
		resp := Response{StatusCode: code, Description: r.String("description")}
		if schema := r.Object("schema"); schema != nil {
			resp.ReferencedModel = referencedName(schema)
		}
		out = append(out, resp)
	}
	return out
}

// requestExample renders the body parameters' examples keyed by parameter
// name. A lone parameter named "body" is rendered bare, any other lone
// parameter is wrapped under its name, and several parameters are rendered
// one after another.
func (x *extractor) requestExample(body []Request) string {
	byName := NewObject()
	for _, req := range body {
		byName.Set(req.Name, x.cfg.synth.Synthesize(req.Type, req.Model))
	}
	switch byName.Len() {
	case 0:
		return ""
	case 1:
		if v, ok := byName.Get("body"); ok {
			return MarshalExample(v)
		}
		return MarshalExample(byName)
	}
	var b strings.Builder
	for _, name := range byName.Keys() {
		v, _ := byName.Get(name)
		b.WriteString(MarshalExample(v))
	}
	return b.String()
}

// deref follows a "$ref" into one of the document's top-level sections.
func (x *extractor) deref(obj *Object, prefix, section string) *Object {
	ref := obj.String("$ref")
	if ref == "" || !strings.HasPrefix(ref, prefix) {
		return obj
	}
	target := x.doc.Object(section).Object(strings.TrimPrefix(ref, prefix))
	if target == nil {
		x.cfg.logger.Debug("unresolved reference", "ref", ref)
	}
	return target
}

func (x *extractor) allowMethod(method string) bool {
	if len(x.cfg.methods) == 0 {
		return true
	}
	_, ok := x.cfg.methods[HttpMethod(strings.ToLower(method))]
	return ok
}

func (x *extractor) allowByTags(tags []string) bool {
	if len(x.cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := x.cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := x.cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

// referencedName names the model a response schema points at. springfox
// documents carry it as originalRef.
func referencedName(schema *Object) string {
	if orig := schema.String("originalRef"); orig != "" {
		return orig
	}
	if ref := schema.String("$ref"); ref != "" {
		return RefName(ref)
	}
	if ref := schema.Object("items").String("$ref"); ref != "" {
		return RefName(ref)
	}
	return ""
}

func groupByTitle(tables []Table) map[string][]Table {
	out := make(map[string][]Table)
	for _, t := range tables {
		out[t.Title] = append(out[t.Title], t)
	}
	return out
}

func paramKey(in, name string) string { return in + ":" + name }

func asObject(v any) *Object {
	obj, _ := v.(*Object)
	return obj
}

func orDefault(list, def []string) []string {
	if len(list) > 0 {
		return list
	}
	return def
}
