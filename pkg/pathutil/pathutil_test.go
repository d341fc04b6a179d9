package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPathSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"getUserById", "get-user-by-id"},
		{"GetUserById", "get-user-by-id"},
		{"count", "count"},
		{"findActive", "find-active"},
		{"ABC", "a-b-c"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToPathSegment(tt.input))
		})
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"name": "alice",
		"address": map[string]any{
			"city": "paris",
		},
	}

	t.Run("top level", func(t *testing.T) {
		t.Parallel()
		v, ok := Get(doc, "name")
		assert.True(t, ok)
		assert.Equal(t, "alice", v)
	})

	t.Run("nested", func(t *testing.T) {
		t.Parallel()
		v, ok := Get(doc, "address.city")
		assert.True(t, ok)
		assert.Equal(t, "paris", v)
	})

	t.Run("missing path does not create intermediates", func(t *testing.T) {
		t.Parallel()
		v, ok := Get(doc, "profile.email")
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.NotContains(t, doc, "profile")
	})

	t.Run("through a scalar", func(t *testing.T) {
		t.Parallel()
		_, ok := Get(doc, "name.first")
		assert.False(t, ok)
	})

	t.Run("nil map", func(t *testing.T) {
		t.Parallel()
		_, ok := Get(nil, "a.b")
		assert.False(t, ok)
	})
}

func TestSet(t *testing.T) {
	t.Parallel()

	t.Run("creates intermediate maps", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{}
		got := Set(doc, "a.b.c", 3)
		assert.Equal(t, 3, got)

		v, ok := Get(doc, "a.b.c")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("replaces scalar intermediate", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{"a": "x"}
		Set(doc, "a.b", true)
		assert.Equal(t, map[string]any{"b": true}, doc["a"])
	})

	t.Run("nil map is ignored", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1, Set(nil, "a", 1))
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	t.Run("missing path leaves map unchanged", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{"a": map[string]any{"b": 1}}
		got := Remove(doc, "x.y")
		assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, got)
		assert.NotContains(t, doc, "x")
	})

	t.Run("removes nested leaf", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{"a": map[string]any{"b": 1, "c": 2}}
		Remove(doc, "a.b")
		assert.Equal(t, map[string]any{"a": map[string]any{"c": 2}}, doc)
	})
}

func TestOmitKeys(t *testing.T) {
	t.Parallel()

	t.Run("no keys is a no-op", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{"a": 1}
		assert.Equal(t, map[string]any{"a": 1}, OmitKeys(doc))
	})

	t.Run("removes top level and nested keys", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{
			"password": "secret",
			"profile":  map[string]any{"ssn": "123", "name": "bob"},
			"keep":     true,
		}
		got := OmitKeys(doc, "password", "profile.ssn", "absent", "absent.deep")
		assert.Equal(t, map[string]any{
			"profile": map[string]any{"name": "bob"},
			"keep":    true,
		}, got)
	})

	t.Run("returns the same map", func(t *testing.T) {
		t.Parallel()
		doc := map[string]any{"a": 1}
		got := OmitKeys(doc, "a")
		got["b"] = 2
		assert.Equal(t, 2, doc["b"])
	})

	t.Run("nil map", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, OmitKeys(nil, "a"))
	})
}
