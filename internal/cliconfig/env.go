package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvPort      = "RESTKIT_PORT"
	EnvConfig    = "RESTKIT_CONFIG"
	EnvLogLevel  = "RESTKIT_LOG_LEVEL"
	EnvLogFormat = "RESTKIT_LOG_FORMAT"
	EnvMongoURI  = "RESTKIT_MONGO_URI"
	EnvMetrics   = "RESTKIT_METRICS"
	EnvRateLimit = "RESTKIT_RATE_LIMIT"
)

// LoadEnv sets the values present in the environment.
// Malformed numbers and booleans are ignored.
func LoadEnv(s *Settings) {
	LoadEnvFunc(s, os.Getenv)
}

// LoadEnvFunc is LoadEnv with a custom lookup.
func LoadEnvFunc(s *Settings, getenv func(string) string) {
	if v := getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			s.Port = port
			s.Set(KeyPort, SourceEnv)
		}
	}

	if v := getenv(EnvConfig); v != "" {
		s.ConfigFile = v
		s.Set(KeyConfigFile, SourceEnv)
	}

	if v := getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
		s.Set(KeyLogLevel, SourceEnv)
	}

	if v := getenv(EnvLogFormat); v != "" {
		s.LogFormat = v
		s.Set(KeyLogFormat, SourceEnv)
	}

	if v := getenv(EnvMongoURI); v != "" {
		s.MongoURI = v
		s.Set(KeyMongoURI, SourceEnv)
	}

	if v := getenv(EnvRateLimit); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			s.RateLimit = rps
			s.Set(KeyRateLimit, SourceEnv)
		}
	}

	if v := getenv(EnvMetrics); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Metrics = b
			s.Set(KeyMetrics, SourceEnv)
		}
	}
}
