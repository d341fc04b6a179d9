package resource

import (
	"log/slog"

	"github.com/getmockd/restkit/pkg/store"
)

// Defaults applied by New.
const (
	DefaultKey             = "collection"
	DefaultPrivatesKey     = "privateKeys"
	DefaultPageSizeMax     = 500
	DefaultPageSizeDefault = 20
	DefaultSortBy          = "-_id"
)

// Supported HTTP methods, lower-cased.
const (
	MethodGet    = "get"
	MethodPost   = "post"
	MethodPut    = "put"
	MethodPatch  = "patch"
	MethodDelete = "delete"
)

// DefaultSupports lists the methods a resource serves unless configured.
var DefaultSupports = []string{MethodPost, MethodPatch, MethodPut, MethodGet, MethodDelete}

// Config describes one mounted resource. Every field except Model is optional.
type Config struct {
	// Path is the base URL path. Defaults to "/" + lower-cased model name.
	Path string
	// Key names the per-request accumulator for middleware (RequestContext.Value).
	Key string
	// PrivatesKey names the model static listing field paths to redact.
	PrivatesKey string
	// Initializers run after the accumulator is initialized, before dispatch.
	Initializers []Middleware
	// Mutators run after dispatch, before redaction.
	Mutators []Middleware
	// Model is the store collaborator.
	Model store.Model
	// Statics names the model static holding custom handlers. Empty disables
	// static route generation.
	Statics string
	// PageSizeMax caps the page size a client can request.
	PageSizeMax int
	// PageSizeDefault is the page size when the client sends none.
	PageSizeDefault int
	// SortBy is the sort spec when the client sends none.
	SortBy string
	// Supports lists the HTTP methods served by the default routes.
	Supports []string
	// Logger receives pipeline diagnostics. Defaults to a no-op logger.
	Logger *slog.Logger
}
