package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec string
		want []SortField
	}{
		{"-_id", []SortField{{Field: "_id", Descending: true}}},
		{"name", []SortField{{Field: "name"}}},
		{"name -age +city", []SortField{{Field: "name"}, {Field: "age", Descending: true}, {Field: "city"}}},
		{"  ", []SortField{}},
		{"- +", []SortField{}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseSort(tt.spec))
		})
	}
}

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	err := error(&NotFoundError{Model: "items", ID: "42"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `items "42" not found`, err.Error())
}

func TestStringList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, StringList([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, StringList([]any{"a", "b"}))
	assert.Nil(t, StringList([]any{"a", 1}))
	assert.Nil(t, StringList("a"))
	assert.Nil(t, StringList(nil))
}

type plainModel struct{ Model }

type staticModel struct {
	Model
	statics map[string]any
}

func (m staticModel) Static(key string) (any, bool) {
	v, ok := m.statics[key]
	return v, ok
}

func TestStatic(t *testing.T) {
	t.Parallel()

	_, ok := Static(plainModel{}, "privateKeys")
	assert.False(t, ok)

	m := staticModel{statics: map[string]any{"privateKeys": []string{"password"}}}
	v, ok := Static(m, "privateKeys")
	assert.True(t, ok)
	assert.Equal(t, []string{"password"}, v)

	_, ok = Static(m, "")
	assert.False(t, ok)
}
