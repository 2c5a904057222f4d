package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tablesByTag(res *Result) map[string]Table {
	out := map[string]Table{}
	for _, g := range res.Groups() {
		for _, tbl := range g.Tables {
			out[tbl.Tag] = tbl
		}
	}
	return out
}

func TestExtract_GroupsSortedByTitle(t *testing.T) {
	t.Parallel()
	res := Extract(loadPetstore(t))

	groups := res.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, "admin", groups[0].Title)
	assert.Equal(t, DefaultTitle, groups[1].Title)
	assert.Equal(t, "pet", groups[2].Title)
	assert.Equal(t, 5, res.Len())
	assert.Equal(t, "Swagger Petstore", res.Title())

	var pet []string
	for _, tbl := range groups[2].Tables {
		pet = append(pet, tbl.Tag)
	}
	assert.Equal(t, []string{"listPets", "Create a pet", "updatePet"}, pet)
}

func TestExtract_ListOperation(t *testing.T) {
	t.Parallel()
	list := tablesByTag(Extract(loadPetstore(t)))["listPets"]

	assert.Equal(t, "/api/pets", list.URL)
	assert.Equal(t, "get", list.Method)
	assert.Equal(t, "List pets", list.Summary)
	assert.Equal(t, "Returns all pets", list.Description)
	assert.Equal(t, "application/json", list.RequestContentTypes)
	assert.Equal(t, "application/json,application/xml", list.ResponseContentTypes)

	require.Len(t, list.QueryParams, 2)
	assert.Equal(t, "limit", list.QueryParams[0].Name)
	assert.Equal(t, "page size", list.QueryParams[0].Description)
	assert.Equal(t, "integer(int64)", Render(list.QueryParams[0].Type))
	assert.Equal(t, "status", list.QueryParams[1].Name)
	assert.Equal(t, "array:string", Render(list.QueryParams[1].Type))
	require.Len(t, list.HeaderParams, 1)
	assert.Equal(t, "X-Trace", list.HeaderParams[0].Name)
	assert.Empty(t, list.PathParams)
	assert.Empty(t, list.BodyParams)
	assert.Equal(t, "", list.RequestExample)

	require.Len(t, list.Responses, 2)
	assert.Equal(t, Response{StatusCode: "200", Description: "ok", ReferencedModel: "Pet"}, list.Responses[0])
	assert.Equal(t, Response{StatusCode: "default", Description: "unexpected error", ReferencedModel: "Error"}, list.Responses[1])

	assert.Equal(t, "array:Pet", Render(list.ResponseType))
	require.NotNil(t, list.ResponseModel)
	assert.Equal(t, []string{"id", "name"}, names(list.ResponseModel.Properties))
	assert.Equal(t, "[\n  {\n    \"id\": 0,\n    \"name\": \"string\"\n  }\n]", list.ResponseExample)
}

func TestExtract_BodyAndCommonParameters(t *testing.T) {
	t.Parallel()
	create := tablesByTag(Extract(loadPetstore(t)))["Create a pet"]

	assert.Equal(t, "pet", create.Title)
	assert.Equal(t, "post", create.Method)
	assert.Equal(t, "application/xml", create.RequestContentTypes)
	require.Len(t, create.BodyParams, 1)
	body := create.BodyParams[0]
	assert.True(t, body.Required)
	assert.Equal(t, "object:Pet", Render(body.Type))
	require.NotNil(t, body.Model)
	assert.Equal(t, "{\n  \"id\": 0,\n  \"name\": \"string\"\n}", create.RequestExample)

	require.Len(t, create.QueryParams, 1)
	assert.Equal(t, "common limit", create.QueryParams[0].Description)
	assert.Equal(t, "integer(int32)", Render(create.QueryParams[0].Type))
	require.Len(t, create.HeaderParams, 1)

	assert.Nil(t, create.ResponseModel)
	assert.Equal(t, "", create.ResponseExample)
}

func TestExtract_ResponseWithout200(t *testing.T) {
	t.Parallel()
	del := tablesByTag(Extract(loadPetstore(t)))["deletePet"]

	assert.Equal(t, "/api/pets/{petId}", del.URL)
	assert.True(t, del.Deprecated)
	require.Len(t, del.PathParams, 1)
	assert.Equal(t, "petId", del.PathParams[0].Name)
	assert.True(t, del.PathParams[0].Required)
	assert.Equal(t, []Response{{StatusCode: "404", Description: "not found", ReferencedModel: "Error"}}, del.Responses)
	assert.Nil(t, del.ResponseModel)
	assert.Nil(t, del.ResponseType)
	assert.Equal(t, "", del.ResponseExample)
}

func TestExtract_AllOfBodyAndOriginalRef(t *testing.T) {
	t.Parallel()
	upd := tablesByTag(Extract(loadPetstore(t)))["updatePet"]

	want := "{\n  \"id\": 0,\n  \"name\": \"string\",\n  \"breed\": \"string\"\n}"
	assert.Equal(t, want, upd.RequestExample)
	assert.Equal(t, want, upd.ResponseExample)
	assert.Equal(t, "Dog", upd.Responses[0].ReferencedModel)
	assert.Same(t, upd.BodyParams[0].Model, upd.ResponseModel)
}

func TestExtract_UntaggedMapResponse(t *testing.T) {
	t.Parallel()
	res := Extract(loadPetstore(t))
	require.Len(t, res.Tables[DefaultTitle], 1)
	health := res.Tables[DefaultTitle][0]

	assert.Equal(t, "Health check", health.Tag)
	assert.Equal(t, "object", Render(health.ResponseType))
	assert.Equal(t, "{\n  \"dictionary key (*)\": \"string\"\n}", health.ResponseExample)
}

func TestExtract_Filters(t *testing.T) {
	t.Parallel()
	doc := loadPetstore(t)

	onlyAdmin := Extract(doc, WithIncludeTags([]string{"admin"}))
	assert.ElementsMatch(t, []string{"Create a pet", "deletePet"}, keys(tablesByTag(onlyAdmin)))
	assert.Len(t, onlyAdmin.Tables["pet"], 1)

	noAdmin := Extract(doc, WithExcludeTags([]string{" admin "}))
	assert.ElementsMatch(t, []string{"listPets", "updatePet", "Health check"}, keys(tablesByTag(noAdmin)))

	gets := Extract(doc, WithMethods([]HttpMethod{"GET"}))
	assert.ElementsMatch(t, []string{"listPets", "Health check"}, keys(tablesByTag(gets)))
}

func TestExtract_SamplePrimitiveArrays(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `{
		"paths": {"/tags": {"get": {"responses": {"200": {"description": "ok", "schema": {"type": "array", "items": {"type": "string"}}}}}}}
	}`)

	plain := Extract(doc).Tables[DefaultTitle][0]
	assert.Equal(t, "[]", plain.ResponseExample)

	sampled := Extract(doc, WithSamplePrimitiveArrays(true)).Tables[DefaultTitle][0]
	assert.Equal(t, "[\n  \"string\"\n]", sampled.ResponseExample)
}

func TestExtract_MissingSections(t *testing.T) {
	t.Parallel()
	res := Extract(mustParse(t, `{"swagger": "2.0"}`))
	assert.Empty(t, res.Tables)
	assert.Nil(t, res.Info)

	res = Extract(nil)
	require.NotNil(t, res)
	assert.Empty(t, res.Groups())

	doc := mustParse(t, `{"paths": {"/x": {"get": {}, "put": "bogus"}}}`)
	res = Extract(doc)
	require.Len(t, res.Tables[DefaultTitle], 1)
	tbl := res.Tables[DefaultTitle][0]
	assert.Equal(t, "/x", tbl.URL)
	assert.Equal(t, "application/json", tbl.RequestContentTypes)
	assert.Empty(t, tbl.Responses)
	assert.NotNil(t, tbl.PathParams)
	assert.NotNil(t, tbl.QueryParams)
	assert.NotNil(t, tbl.BodyParams)
}

func TestExtract_MultipleBodyParameters(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `{
		"paths": {"/x": {"post": {"parameters": [
			{"name": "a", "in": "body", "schema": {"type": "string"}},
			{"name": "b", "in": "body", "schema": {"type": "integer"}}
		]}}}
	}`)

	tbl := Extract(doc).Tables[DefaultTitle][0]
	require.Len(t, tbl.BodyParams, 2)
	assert.Equal(t, `"string"0`, tbl.RequestExample)
}

func TestExtract_NamedBodyParameterIsWrapped(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `{
		"paths": {"/pets": {"post": {"parameters": [
			{"name": "pet", "in": "body", "schema": {"$ref": "#/definitions/Pet"}}
		]}}},
		"definitions": {"Pet": {"properties": {"id": {"type": "integer"}}}}
	}`)

	tbl := Extract(doc).Tables[DefaultTitle][0]
	assert.Equal(t, "{\n  \"pet\": {\n    \"id\": 0\n  }\n}", tbl.RequestExample)
}

func TestExtract_RepeatedBodyNameKeepsLast(t *testing.T) {
	t.Parallel()
	doc := mustParse(t, `{
		"paths": {"/x": {"post": {"parameters": [
			{"name": "body", "in": "body", "schema": {"type": "string"}},
			{"name": "body", "in": "body", "schema": {"type": "boolean"}}
		]}}}
	}`)

	tbl := Extract(doc).Tables[DefaultTitle][0]
	assert.Equal(t, "true", tbl.RequestExample)
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()
	doc := loadPetstore(t)
	assert.Equal(t, compactJSON(t, Extract(doc)), compactJSON(t, Extract(doc)))
}

func keys(m map[string]Table) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
