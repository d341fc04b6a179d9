package cliconfig

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/getmockd/restkit/pkg/config"
)

// Value sources.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Setting keys, as reported in Sources.
const (
	KeyPort       = "port"
	KeyConfigFile = "configFile"
	KeyLogLevel   = "logLevel"
	KeyLogFormat  = "logFormat"
	KeyMongoURI   = "mongoUri"
	KeyMetrics    = "metrics"
	KeyRateLimit  = "rateLimit"
)

// DefaultConfigFiles are looked up, in order, in the working directory when
// no configuration file is given.
var DefaultConfigFiles = []string{"restkit.yaml", "restkit.yml", "restkit.json"}

// Settings are the CLI overrides applied on top of the configuration file.
// Zero values mean "not set" unless Sources says otherwise.
type Settings struct {
	Port       int
	ConfigFile string
	LogLevel   string
	LogFormat  string
	MongoURI   string
	Metrics    bool
	RateLimit  float64

	// Sources maps a setting key to where its value came from.
	Sources map[string]string
}

// New returns empty settings.
func New() *Settings {
	return &Settings{Sources: make(map[string]string)}
}

// Set records that key was set from source.
func (s *Settings) Set(key, source string) {
	if s.Sources == nil {
		s.Sources = make(map[string]string)
	}
	s.Sources[key] = source
}

// IsSet reports whether key was set by any source.
func (s *Settings) IsSet(key string) bool {
	_, ok := s.Sources[key]
	return ok
}

// Source returns where key came from, or SourceDefault.
func (s *Settings) Source(key string) string {
	if src, ok := s.Sources[key]; ok {
		return src
	}
	return SourceDefault
}

// Keys returns the set keys in sorted order.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.Sources))
	for k := range s.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResolveConfigFile returns the configured file, or the first default file
// found in dir. It returns "" when there is none.
func (s *Settings) ResolveConfigFile(dir string) string {
	if s.ConfigFile != "" {
		return s.ConfigFile
	}
	for _, name := range DefaultConfigFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Apply overlays the set values onto cfg. A Mongo URI also switches the
// store driver to mongo.
func (s *Settings) Apply(cfg *config.Config) {
	if s.IsSet(KeyPort) {
		cfg.Server.Port = s.Port
	}
	if s.IsSet(KeyLogLevel) {
		cfg.Server.LogLevel = s.LogLevel
	}
	if s.IsSet(KeyLogFormat) {
		cfg.Server.LogFormat = s.LogFormat
	}
	if s.IsSet(KeyMetrics) {
		cfg.Server.Metrics = s.Metrics
	}
	if s.IsSet(KeyRateLimit) {
		cfg.Server.RateLimit.RPS = s.RateLimit
	}
	if s.IsSet(KeyMongoURI) {
		cfg.Store.Driver = config.DriverMongo
		cfg.Store.URI = s.MongoURI
	}
}
