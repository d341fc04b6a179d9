package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  port: 8080
  logLevel: debug
  metrics: true
store:
  driver: memory
resources:
  - name: users
    privateFields: [password, profile.ssn]
    computed:
      displayName: "first + ' ' + last"
    statics:
      admins:
        filter: {role: admin}
        sort: name
        limit: 10
    seed:
      - {_id: "1", first: Ada, last: Lovelace, role: admin, profile: {ssn: "x"}}
  - name: Posts
    path: /api/posts/
    supports: [get, POST]
    pageSizeMax: 50
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_YAML(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(writeFile(t, "restkit.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.Server.LogFormat)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, DefaultDatabase, cfg.Store.Database)

	require.Len(t, cfg.Resources, 2)
	users := cfg.Resources[0]
	assert.Equal(t, "/users", users.ResolvedPath())
	assert.Equal(t, []string{"password", "profile.ssn"}, users.PrivateFields)
	assert.Equal(t, "first + ' ' + last", users.Computed["displayName"])
	assert.Equal(t, SavedQuery{Filter: map[string]any{"role": "admin"}, Sort: "name", Limit: 10}, users.Statics["admins"])
	require.Len(t, users.Seed, 1)
	assert.Equal(t, map[string]any{"ssn": "x"}, users.Seed[0]["profile"])

	posts := cfg.Resources[1]
	assert.Equal(t, "/api/posts", posts.ResolvedPath())
	assert.Equal(t, 50, posts.PageSizeMax)
}

func TestLoadFromFile_JSON(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromFile(writeFile(t, "restkit.json", `{
		"store": {"driver": "mongo", "uri": "mongodb://localhost:27017"},
		"resources": [{"name": "items", "sortBy": "name"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "name", cfg.Resources[0].SortBy)
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.yaml") }, ErrFileNotFound},
		{"empty", func(t *testing.T) string { return writeFile(t, "empty.yaml", "  \n") }, ErrEmptyFile},
		{"bad json", func(t *testing.T) string { return writeFile(t, "bad.json", "{ nope }") }, ErrInvalidJSON},
		{"bad yaml", func(t *testing.T) string { return writeFile(t, "bad.yml", "resources: [\n") }, ErrInvalidYAML},
		{"unknown yaml field", func(t *testing.T) string {
			return writeFile(t, "extra.yaml", "resources:\n  - name: a\n    colour: red\n")
		}, ErrInvalidYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(tt.path(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFromFile(t.TempDir())
		assert.Error(t, err)
	})
}

func TestLoadFromFile_Overrides(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "restkit.yaml", "store:\n  driver: mongo\nresources:\n  - name: users\n")
	_, err := LoadFromFile(path)
	require.Error(t, err)

	cfg, err := LoadFromFile(path, func(c *Config) { c.Store.URI = "mongodb://localhost" })
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost", cfg.Store.URI)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Server: ServerConfig{Port: 70000, LogLevel: "loud", LogFormat: "xml"},
		Store:  StoreConfig{Driver: "mongo"},
		Resources: []ResourceConfig{
			{Name: "users", Seed: []map[string]any{{"a": 1}}},
			{Name: "users", Path: "/users/", Supports: []string{"get", "head"}},
			{Name: "", Path: "relative", PageSizeMax: -1},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{
		"server.port",
		"server.logLevel",
		"server.logFormat",
		"store.uri",
		"resources[0].seed",
		"resources[1].name",
		"resources[1].path",
		"resources[1].supports",
		"resources[2].name",
		"resources[2].path",
		"resources[2].pageSizeMax",
	}, fields)
}

func TestValidate_NoResources(t *testing.T) {
	t.Parallel()

	err := Default().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one resource")
}

func TestToYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	cfg, err := ParseYAML([]byte(validYAML))
	require.NoError(t, err)

	data, err := ToYAML(cfg)
	require.NoError(t, err)
	again, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Resources[0].Statics, again.Resources[0].Statics)

	data, err = ToJSON(cfg)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	_, err = ToYAML(nil)
	assert.Error(t, err)
}

func TestApplyDefaults_FileDriver(t *testing.T) {
	t.Parallel()

	cfg, err := ParseYAML([]byte("store:\n  driver: file\nresources:\n  - name: notes\n    seed: [{_id: \"1\"}]\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.Store.Dir)
	assert.Len(t, cfg.Resources[0].Seed, 1)
}

func TestLoadFromFile_Schema(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "restkit.yaml", `
server:
  port: 70000
  rateLimit: {rps: -1}
store:
  driver: redis
resources:
  - name: users
    supports: [get, head]
    statics:
      admins: {limit: -1}
  - path: /things
`)
	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	var fields []string
	for _, e := range err.(interface{ Unwrap() error }).Unwrap().(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		assert.NotEmpty(t, ve.Message)
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{
		"server.port",
		"server.rateLimit.rps",
		"store.driver",
		"resources[0].supports[1]",
		"resources[0].statics.admins.limit",
		"resources[1]",
	}, fields)
}

func TestCheckSchema(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckSchema(map[string]any{"resources": []any{map[string]any{"name": "users"}}}))

	err := CheckSchema([]any{"not", "a", "config"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "(root)", ve.Field)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(SchemaJSON, &doc))
	assert.Equal(t, SchemaID, doc["$id"])
}
