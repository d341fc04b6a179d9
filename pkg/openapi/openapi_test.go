package openapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testResources = []Resource{
	{
		Name:     "users",
		Path:     "/users",
		Supports: []string{"get", "post", "put", "patch", "delete"},
		Statics:  []string{"/users/admins"},
	},
	{Name: "tags", Path: "/api/tags", Supports: []string{"get"}},
}

func TestBuild(t *testing.T) {
	t.Parallel()

	doc := Build("restkit", "1.0.0", testResources)
	require.NoError(t, doc.Validate(context.Background()))

	users := doc.Paths.Value("/users")
	require.NotNil(t, users)
	assert.NotNil(t, users.Get)
	assert.NotNil(t, users.Post)
	assert.NotNil(t, users.Delete)
	assert.Nil(t, users.Put, "put without an id is not an update")
	assert.True(t, users.Post.RequestBody.Value.Required)

	var params []string
	for _, p := range users.Get.Parameters {
		params = append(params, p.Value.Name)
	}
	assert.ElementsMatch(t, []string{"sort", "page", "limit"}, params)

	item := doc.Paths.Value("/users/{id}")
	require.NotNil(t, item)
	assert.NotNil(t, item.Put)
	assert.NotNil(t, item.Patch)
	assert.Equal(t, "id", item.Get.Parameters[0].Value.Name)

	require.NotNil(t, doc.Paths.Value("/users/admins"))
	require.NotNil(t, doc.Paths.Value("/users/admins/{id}"))

	tags := doc.Paths.Value("/api/tags")
	require.NotNil(t, tags)
	assert.Nil(t, tags.Post)
	assert.Len(t, doc.Tags, 2)
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	doc := Build("restkit", "dev", testResources)

	data, err := MarshalJSON(doc)
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, Version, fromJSON["openapi"])

	data, err = MarshalYAML(doc)
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, Version, fromYAML["openapi"])
	assert.Contains(t, fromYAML["paths"], "/users/{id}")
}
