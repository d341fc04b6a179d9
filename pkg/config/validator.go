package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/restkit/pkg/logging"
)

// ValidationError reports one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

var validVerbs = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"patch":  true,
	"delete": true,
}

// Validate reports every invalid field, joined with errors.Join.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		add("server.port", "must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		add("server.readTimeout", "cannot be negative")
	}
	if c.Server.WriteTimeout < 0 {
		add("server.writeTimeout", "cannot be negative")
	}
	if !logging.ValidLevel(c.Server.LogLevel) {
		add("server.logLevel", "unknown level %q", c.Server.LogLevel)
	}
	if f := strings.ToLower(c.Server.LogFormat); f != "" && f != "text" && f != "json" {
		add("server.logFormat", "must be text or json, got %q", c.Server.LogFormat)
	}

	if c.Server.RateLimit.RPS < 0 {
		add("server.rateLimit.rps", "cannot be negative")
	}
	if c.Server.RateLimit.Burst < 0 {
		add("server.rateLimit.burst", "cannot be negative")
	}

	switch c.Store.Driver {
	case "", DriverMemory, DriverFile:
	case DriverMongo:
		if c.Store.URI == "" {
			add("store.uri", "is required for the mongo driver")
		}
	default:
		add("store.driver", "must be memory, file or mongo, got %q", c.Store.Driver)
	}

	if len(c.Resources) == 0 {
		add("resources", "at least one resource is required")
	}

	names := make(map[string]int, len(c.Resources))
	paths := make(map[string]int, len(c.Resources))
	for i, r := range c.Resources {
		field := fmt.Sprintf("resources[%d]", i)
		if r.Name == "" {
			add(field+".name", "is required")
		} else if j, dup := names[r.Name]; dup {
			add(field+".name", "duplicates resources[%d]", j)
		} else {
			names[r.Name] = i
		}

		p := r.ResolvedPath()
		switch {
		case !strings.HasPrefix(p, "/"):
			add(field+".path", "must start with /")
		case p == "/":
			add(field+".path", "cannot be the root path")
		}
		if j, dup := paths[p]; dup {
			add(field+".path", "%s duplicates resources[%d]", p, j)
		} else {
			paths[p] = i
		}

		for _, v := range r.Supports {
			if !validVerbs[strings.ToLower(v)] {
				add(field+".supports", "unknown method %q", v)
			}
		}
		if r.PageSizeMax < 0 {
			add(field+".pageSizeMax", "cannot be negative")
		}
		if r.PageSizeDefault < 0 {
			add(field+".pageSizeDefault", "cannot be negative")
		}
		for name, q := range r.Statics {
			if name == "" {
				add(field+".statics", "name cannot be empty")
			}
			if q.Limit < 0 {
				add(field+".statics."+name+".limit", "cannot be negative")
			}
		}
		for path := range r.Computed {
			if path == "" {
				add(field+".computed", "field name cannot be empty")
			}
		}
		if len(r.Seed) > 0 && c.Store.Driver == DriverMongo {
			add(field+".seed", "seed data is not supported by the mongo driver")
		}
	}

	return errors.Join(errs...)
}
