package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	t.Parallel()

	t.Run("empty documents", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Redact([]any{}, []string{"password"}))
	})

	t.Run("no paths leaves documents unmodified", func(t *testing.T) {
		t.Parallel()
		docs := []any{map[string]any{"a": 1}}
		assert.Equal(t, []any{map[string]any{"a": 1}}, Redact(docs, nil))
	})

	t.Run("removes top level and nested paths on a copy", func(t *testing.T) {
		t.Parallel()
		original := map[string]any{
			"name":     "alice",
			"password": "hunter2",
			"profile":  map[string]any{"ssn": "123-45", "city": "lyon"},
		}
		got := Redact([]any{original}, []string{"password", "profile.ssn"})

		require.Len(t, got, 1)
		assert.Equal(t, map[string]any{
			"name":    "alice",
			"profile": map[string]any{"city": "lyon"},
		}, got[0])

		assert.Contains(t, original, "password")
		assert.Contains(t, original["profile"], "ssn")
	})

	t.Run("non documents pass through", func(t *testing.T) {
		t.Parallel()
		got := Redact([]any{"text", 3}, []string{"a"})
		assert.Equal(t, []any{"text", 3}, got)
	})
}

func TestShape(t *testing.T) {
	t.Parallel()

	x := map[string]any{"id": "x"}
	y := map[string]any{"id": "y"}

	assert.Equal(t, x, Shape([]any{x}))
	assert.Equal(t, []any{}, Shape([]any{}))
	assert.Equal(t, []any{}, Shape(nil))
	assert.Equal(t, []any{x, y}, Shape([]any{x, y}))

	// A single accumulated batch unwraps to the batch itself.
	assert.Equal(t, []map[string]any{x}, Shape([]any{[]map[string]any{x}}))
}

func TestBatch(t *testing.T) {
	t.Parallel()

	doc := map[string]any{"a": 1}

	assert.Equal(t, []any{doc}, Batch([]map[string]any{doc}))
	assert.Equal(t, []any{doc, "x"}, Batch([]any{doc, "x"}))
	assert.Equal(t, []any{doc}, Batch(doc))
	assert.Equal(t, []any{}, Batch([]map[string]any{}))
}
