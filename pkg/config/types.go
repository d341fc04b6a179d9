package config

import (
	"strings"
	"time"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverFile   = "file"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultPort         = 3000
	DefaultReadTimeout  = 30
	DefaultWriteTimeout = 30
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultDatabase     = "restkit"
	DefaultDataDir      = "data"
)

// Config is the file configuration of a restkit server.
type Config struct {
	Version   string           `json:"version,omitempty" yaml:"version,omitempty"`
	Server    ServerConfig     `json:"server" yaml:"server"`
	Store     StoreConfig      `json:"store" yaml:"store"`
	Resources []ResourceConfig `json:"resources" yaml:"resources"`
}

// ServerConfig holds listener and logging settings.
type ServerConfig struct {
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// ReadTimeout and WriteTimeout are in seconds.
	ReadTimeout  int    `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout int    `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	LogLevel     string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat    string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	Metrics      bool   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	// RateLimit throttles requests per client. Disabled when RPS is 0.
	RateLimit RateLimitConfig `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	// OpenAPI serves a generated OpenAPI document at /openapi.json.
	OpenAPI bool `json:"openapi,omitempty" yaml:"openapi,omitempty"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	RPS            float64  `json:"rps,omitempty" yaml:"rps,omitempty"`
	Burst          int      `json:"burst,omitempty" yaml:"burst,omitempty"`
	TrustedProxies []string `json:"trustedProxies,omitempty" yaml:"trustedProxies,omitempty"`
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// StoreConfig selects the document store.
type StoreConfig struct {
	// Driver is memory, file or mongo.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	// Dir holds one JSON file per collection for the file driver.
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	URI      string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
}

// ResourceConfig describes one mounted resource.
type ResourceConfig struct {
	// Name is the model (collection) name.
	Name string `json:"name" yaml:"name"`
	// Path defaults to "/" + lower-cased Name.
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Key         string `json:"key,omitempty" yaml:"key,omitempty"`
	PrivatesKey string `json:"privatesKey,omitempty" yaml:"privatesKey,omitempty"`
	// PrivateFields are dot-paths removed from every response.
	PrivateFields []string `json:"privateFields,omitempty" yaml:"privateFields,omitempty"`
	// Statics are saved queries served under {path}/{kebab-name}.
	Statics map[string]SavedQuery `json:"statics,omitempty" yaml:"statics,omitempty"`
	// Computed maps a field path to an expr-lang expression.
	Computed        map[string]string `json:"computed,omitempty" yaml:"computed,omitempty"`
	PageSizeMax     int               `json:"pageSizeMax,omitempty" yaml:"pageSizeMax,omitempty"`
	PageSizeDefault int               `json:"pageSizeDefault,omitempty" yaml:"pageSizeDefault,omitempty"`
	SortBy          string            `json:"sortBy,omitempty" yaml:"sortBy,omitempty"`
	Supports        []string          `json:"supports,omitempty" yaml:"supports,omitempty"`
	// Seed documents are loaded into memory stores at startup, and into file
	// stores whose collection file does not exist yet.
	Seed []map[string]any `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ResolvedPath returns the configured path or the one derived from Name.
func (r ResourceConfig) ResolvedPath() string {
	if r.Path != "" {
		if len(r.Path) > 1 {
			return strings.TrimSuffix(r.Path, "/")
		}
		return r.Path
	}
	return "/" + strings.ToLower(r.Name)
}

// SavedQuery is a fixed list query.
type SavedQuery struct {
	Filter map[string]any `json:"filter,omitempty" yaml:"filter,omitempty"`
	Sort   string         `json:"sort,omitempty" yaml:"sort,omitempty"`
	Limit  int            `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Default returns a configuration with every default applied and no resources.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = DefaultLogFormat
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.Driver == DriverFile && c.Store.Dir == "" {
		c.Store.Dir = DefaultDataDir
	}
	if c.Store.Database == "" {
		c.Store.Database = DefaultDatabase
	}
}
