package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const userSchema = `{
	"type": "object",
	"required": ["name", "email"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"email": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"tags": {"type": "array", "items": {"type": "string"}},
		"address": {
			"type": "object",
			"properties": {"zip": {"type": "string"}}
		}
	}
}`

func compileUsers(t *testing.T) *Schema {
	t.Helper()
	s, err := Compile("users.json", []byte(userSchema))
	require.NoError(t, err)
	return s
}

func TestCompile(t *testing.T) {
	t.Parallel()

	_, err := Compile("bad.json", []byte(`{"type": 12}`))
	assert.Error(t, err)

	_, err = Compile("broken.json", []byte(`{`))
	assert.Error(t, err)

	compileUsers(t)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s := compileUsers(t)

	tests := []struct {
		name   string
		doc    any
		fields []string
	}{
		{"valid", map[string]any{"name": "ada", "email": "a@x"}, nil},
		{"missing required", map[string]any{"name": "ada"}, []string{""}},
		{"below minimum", map[string]any{"name": "ada", "email": "a@x", "age": -1}, []string{"age"}},
		{"nested", map[string]any{"name": "a", "email": "b", "address": map[string]any{"zip": 90210}}, []string{"address.zip"}},
		{"array item", map[string]any{"name": "a", "email": "b", "tags": []any{"ok", 7}}, []string{"tags[1]"}},
		{"not an object", []any{1}, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := s.Validate(tt.doc)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidate_DecodedDocuments(t *testing.T) {
	t.Parallel()

	s := compileUsers(t)

	var fromYAML any
	require.NoError(t, yaml.Unmarshal([]byte("name: ada\nemail: a@x\nage: 36\n"), &fromYAML))
	assert.Empty(t, s.Validate(fromYAML))

	var fromJSON any
	require.NoError(t, json.Unmarshal([]byte(`{"name":"ada","email":"a@x","age":36.5}`), &fromJSON))
	errs := s.Validate(fromJSON)
	require.Len(t, errs, 1)
	assert.Equal(t, "age", errs[0].Field)
	assert.Contains(t, errs[0].Keyword, "/properties/age")

	errs = s.Validate(map[any]any{1: "x"})
	require.Len(t, errs, 1)
	assert.Empty(t, errs[0].Field)
}

func TestFieldFromPointer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", fieldFromPointer(""))
	assert.Equal(t, "", fieldFromPointer("/"))
	assert.Equal(t, "a.b[0]", fieldFromPointer("/a/b/0"))
	assert.Equal(t, "resources[2].supports[1]", fieldFromPointer("/resources/2/supports/1"))
	assert.Equal(t, "0.a", fieldFromPointer("/0/a"))
	assert.Equal(t, "a/b.c~d", fieldFromPointer("/a~1b/c~0d"))
	assert.Equal(t, "age: too small", (&FieldError{Field: "age", Message: "too small"}).Error())
	assert.Equal(t, "too small", (&FieldError{Message: "too small"}).Error())
}
