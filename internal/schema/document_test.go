package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchSchema = `
[enums.Movie]
options = ["MATRIX", "TOWERS", "BEGINS"]

[enums.Show]
options = ["LOST", "DARK"]

[unions.Next]
alternatives = ["Movie", "Show"]

[records.Viewer]
fields = [
  { name = "age", type = "uint8" },
  { name = "premium", type = "bool" },
]

[records.Watch]
fields = [
  { name = "movies", type = "[]?Movie", shape = [2] },
  { name = "grid", type = "[][]float32", shape = [2, 3] },
  { name = "next", type = "Next" },
  { name = "viewer", type = "?Viewer" },
]
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(watchSchema)
	require.NoError(t, err)
	assert.Equal(t, []string{"Viewer", "Watch"}, doc.Records())

	d, err := doc.Record("Watch")
	require.NoError(t, err)
	require.Len(t, d.Fields, 4)

	movies := d.Fields[0].Type
	assert.Equal(t, KindList, movies.Kind)
	assert.Equal(t, []int{2}, movies.Shape)
	assert.Equal(t, KindOptional, movies.Elem.Kind)
	assert.Equal(t, []string{"MATRIX", "TOWERS", "BEGINS"}, movies.Elem.Elem.Labels)

	grid := d.Fields[1].Type
	assert.Equal(t, []int{2}, grid.Shape)
	assert.Equal(t, []int{3}, grid.Elem.Shape)

	next := d.Fields[2].Type
	assert.Equal(t, KindUnion, next.Kind)
	assert.Len(t, next.Alternatives, 2)

	viewer := d.Fields[3].Type
	assert.Equal(t, KindOptional, viewer.Kind)
	assert.Equal(t, KindRecord, viewer.Elem.Kind)
	assert.Nil(t, viewer.Elem.GoType)

	again, err := doc.Record("Viewer")
	require.NoError(t, err)
	assert.Same(t, viewer.Elem, again, "named descriptors are built once")
}

func TestParseDocument_Errors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		record string
	}{
		{"unknown type", `[records.A]
fields = [{ name = "x", type = "Nope" }]`, "A"},
		{"recursive", `[records.A]
fields = [{ name = "x", type = "?A" }]`, "A"},
		{"extra dims", `[records.A]
fields = [{ name = "x", type = "[]int8", shape = [2, 2] }]`, "A"},
		{"empty enum", `[enums.E]
options = []
[records.A]
fields = [{ name = "x", type = "E" }]`, "A"},
		{"missing record", `[records.A]
fields = []`, "B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.schema)
			require.NoError(t, err)
			_, err = doc.Record(tt.record)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := ParseDocument(`[enums.A]
options = ["x"]
[records.A]
fields = []`)
	assert.Error(t, err, "duplicate names")

	_, err = ParseDocument(`[records.float32]
fields = []`)
	assert.Error(t, err, "shadowed primitive")

	_, err = ParseDocument(`[records.A]
colour = "red"`)
	assert.Error(t, err, "unknown keys")

	_, err = ParseDocument(`not toml =`)
	assert.Error(t, err)
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte(watchSchema), 0o600))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	_, err = doc.Record("Watch")
	require.NoError(t, err)

	_, err = LoadDocument(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
