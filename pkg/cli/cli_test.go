package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/restkit/internal/cliconfig"
	"github.com/getmockd/restkit/pkg/config"
)

const testConfig = `
resources:
  - name: users
    privateFields: [password]
    statics:
      admins:
        filter: {role: admin}
  - name: tags
    path: /api/tags
    supports: [get]
`

// execute runs the root command with fresh flag values. Commands share
// package state, so tests in this package do not run in parallel.
func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	for _, key := range []string{
		cliconfig.EnvPort, cliconfig.EnvConfig, cliconfig.EnvLogLevel,
		cliconfig.EnvLogFormat, cliconfig.EnvMongoURI, cliconfig.EnvMetrics, cliconfig.EnvRateLimit,
	} {
		if _, ok := os.LookupEnv(key); !ok {
			t.Setenv(key, "")
		}
	}

	reset(rootCmd, ctx)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func reset(cmd *cobra.Command, ctx context.Context) {
	resetFlag := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(resetFlag)
	cmd.Flags().VisitAll(resetFlag)
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		reset(c, ctx)
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, context.Background(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "restkit "))

	stdout, _, err = execute(t, context.Background(), "version", "--json")
	require.NoError(t, err)
	var out VersionOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.NotEmpty(t, out.Go)
	assert.NotEmpty(t, out.Version)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)

	stdout, _, err := execute(t, context.Background(), "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "is valid (2 resources)")
	assert.NotContains(t, stdout, "/api/tags")
}

func TestValidate_VerboseShowsSources(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)
	t.Setenv(cliconfig.EnvPort, "8080")

	stdout, _, err := execute(t, context.Background(), "validate", "-c", path, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tags -> /api/tags")
	assert.Contains(t, stdout, "port from env")
	assert.Contains(t, stdout, "configFile from flag")
}

func TestValidate_JSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.json", `{"resources":[{"name":"users"}]}`)
	t.Setenv(cliconfig.EnvConfig, path)

	stdout, _, err := execute(t, context.Background(), "validate", "--json")
	require.NoError(t, err)

	var out ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Valid)
	assert.Equal(t, path, out.File)
	assert.Equal(t, []string{"/users"}, out.Resources)
	assert.Equal(t, cliconfig.SourceEnv, out.Sources[cliconfig.KeyConfigFile])
}

func TestValidate_Invalid(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.yaml", `
server:
  port: 70000
resources:
  - name: users
    supports: [head]
`)

	_, stderr, err := execute(t, context.Background(), "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "Configuration is invalid:")
	assert.Contains(t, stderr, "server.port")
	assert.Contains(t, stderr, "resources[0].supports")

	stdout, _, err := execute(t, context.Background(), "validate", "-c", path, "--json")
	require.Error(t, err)
	var out ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Valid)
	assert.Len(t, out.Errors, 2)
}

func TestValidate_EnvOverrideIsValidated(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)
	t.Setenv(cliconfig.EnvLogFormat, "xml")

	_, stderr, err := execute(t, context.Background(), "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "server.logFormat")
}

func TestConfigDiscovery(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, context.Background(), "validate")
	require.ErrorIs(t, err, ErrNoConfig)

	writeConfig(t, dir, "restkit.yml", testConfig)
	stdout, _, err := execute(t, context.Background(), "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "restkit.yml is valid")
}

func TestRoutes(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)

	stdout, _, err := execute(t, context.Background(), "routes", "-c", path, "--json")
	require.NoError(t, err)

	var rows []RouteOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, RouteOutput{Resource: "users", Pattern: "/users/admins", Handler: "static:admins", Methods: []string{"any"}}, rows[0])
	assert.Equal(t, "/users/admins/{id}", rows[1].Pattern)
	assert.Equal(t, "/users", rows[2].Pattern)
	assert.Equal(t, "crud", rows[2].Handler)
	assert.Equal(t, RouteOutput{Resource: "tags", Pattern: "/api/tags/{id}", Handler: "crud", Methods: []string{"get"}}, rows[5])

	stdout, _, err = execute(t, context.Background(), "routes", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "RESOURCE")
	assert.Contains(t, stdout, "static:admins")
}

func TestRoutes_IgnoresMongo(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)
	t.Setenv(cliconfig.EnvMongoURI, "mongodb://127.0.0.1:1")

	stdout, _, err := execute(t, context.Background(), "routes", "-c", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "/api/tags")
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stderr, err := execute(t, ctx, "serve", "-c", path, "--port", "0", "--log-format", "json", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"configuration loaded"`)
	assert.Contains(t, stderr, `"key":"logFormat"`)
	assert.Contains(t, stderr, `"source":"flag"`)
}

func TestServe_NoConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, context.Background(), "serve")
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestOpenAPI(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "api.yaml", testConfig)

	stdout, _, err := execute(t, context.Background(), "openapi", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "openapi: 3.0.3")
	assert.Contains(t, stdout, "/users/admins")

	stdout, _, err = execute(t, context.Background(), "openapi", "-c", path, "--json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Contains(t, doc["paths"], "/api/tags/{id}")

	out := filepath.Join(t.TempDir(), "openapi.json")
	_, stderr, err := execute(t, context.Background(), "openapi", "-c", path, "--format", "json", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote "+out)
	assert.FileExists(t, out)

	_, _, err = execute(t, context.Background(), "openapi", "-c", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSchema(t *testing.T) {
	stdout, _, err := execute(t, context.Background(), "schema")
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Equal(t, config.SchemaID, schema["$id"])

	out := filepath.Join(t.TempDir(), "restkit.schema.json")
	_, stderr, err := execute(t, context.Background(), "schema", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote "+out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, config.SchemaJSON, data)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, err := execute(t, context.Background(), "init", "--name", "notes", "--driver", "file")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created restkit.yaml with resource /notes (file store)")

	stdout, _, err = execute(t, context.Background(), "validate", "--json")
	require.NoError(t, err)
	var out ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Valid)
	assert.Equal(t, []string{"/notes"}, out.Resources)

	_, _, err = execute(t, context.Background(), "init", "--name", "notes")
	assert.ErrorContains(t, err, "already exists")

	_, stderr, err := execute(t, context.Background(), "init", "--name", "tags", "--path", "/api/tags", "--force", "--json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: overwriting restkit.yaml")
}

func TestInit_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	orig := isInteractive
	isInteractive = func() bool { return false }
	t.Cleanup(func() { isInteractive = orig })

	_, _, err := execute(t, context.Background(), "init")
	assert.ErrorContains(t, err, "--name is required")

	_, _, err = execute(t, context.Background(), "init", "--name", "users", "--driver", "mongo")
	assert.ErrorContains(t, err, "store.uri")
	assert.NoFileExists(t, "restkit.yaml")
}
