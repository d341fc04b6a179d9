package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/restkit/pkg/config"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadEnvFunc(t *testing.T) {
	t.Parallel()

	s := New()
	LoadEnvFunc(s, envMap(map[string]string{
		EnvPort:      "8080",
		EnvConfig:    "/etc/restkit.yaml",
		EnvLogLevel:  "debug",
		EnvLogFormat: "json",
		EnvMongoURI:  "mongodb://db:27017",
		EnvMetrics:   "true",
		EnvRateLimit: "2.5",
	}))

	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, "/etc/restkit.yaml", s.ConfigFile)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "mongodb://db:27017", s.MongoURI)
	assert.True(t, s.Metrics)
	assert.InDelta(t, 2.5, s.RateLimit, 0)
	assert.Equal(t, []string{KeyConfigFile, KeyLogFormat, KeyLogLevel, KeyMetrics, KeyMongoURI, KeyPort, KeyRateLimit}, s.Keys())
	assert.Equal(t, SourceEnv, s.Source(KeyPort))
}

func TestLoadEnvFunc_IgnoresMalformed(t *testing.T) {
	t.Parallel()

	s := New()
	LoadEnvFunc(s, envMap(map[string]string{EnvPort: "eighty", EnvMetrics: "maybe"}))
	assert.False(t, s.IsSet(KeyPort))
	assert.False(t, s.IsSet(KeyMetrics))
	assert.Equal(t, SourceDefault, s.Source(KeyPort))
}

func TestApply(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.Metrics = true

	s := New()
	s.Port = 9000
	s.Set(KeyPort, SourceFlag)
	s.Metrics = false
	s.Set(KeyMetrics, SourceEnv)
	s.MongoURI = "mongodb://localhost"
	s.Set(KeyMongoURI, SourceFlag)
	s.RateLimit = 10
	s.Set(KeyRateLimit, SourceEnv)
	s.Apply(cfg)

	assert.InDelta(t, 10, cfg.Server.RateLimit.RPS, 0)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Server.Metrics)
	assert.Equal(t, config.DefaultLogLevel, cfg.Server.LogLevel)
	assert.Equal(t, config.DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost", cfg.Store.URI)
}

func TestResolveConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New()
	assert.Empty(t, s.ResolveConfigFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "restkit.json"), []byte("{}"), 0o644))
	assert.Equal(t, filepath.Join(dir, "restkit.json"), s.ResolveConfigFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "restkit.yaml"), []byte(""), 0o644))
	assert.Equal(t, filepath.Join(dir, "restkit.yaml"), s.ResolveConfigFile(dir))

	s.ConfigFile = "custom.yml"
	assert.Equal(t, "custom.yml", s.ResolveConfigFile(dir))
}
