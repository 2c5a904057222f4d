package spec

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadPetstore(t *testing.T) *Object {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "petstore.json"))
	require.NoError(t, err)
	doc, err := ParseDocument(data)
	require.NoError(t, err)
	return doc
}

func mustParse(t *testing.T, src string) *Object {
	t.Helper()
	doc, err := ParseDocument([]byte(src))
	require.NoError(t, err)
	return doc
}

func compactJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func names(attrs []*ModelAttr) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}
