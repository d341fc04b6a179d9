package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/getmockd/restkit/pkg/httputil"
	"github.com/getmockd/restkit/pkg/query"
	"github.com/getmockd/restkit/pkg/shape"
)

// MaxBodySize is the maximum request body size accepted by a pipeline (10MB).
const MaxBodySize = 10 << 20

// Outcome tells the pipeline whether to run the next stage.
type Outcome int

const (
	// Continue runs the next stage.
	Continue Outcome = iota
	// Halt ends the request. The middleware that halts owns the response.
	Halt
)

// Middleware is one pipeline stage.
type Middleware func(w http.ResponseWriter, rc *RequestContext) Outcome

// Operation produces the result of a request. Default CRUD operations and
// static handlers share this signature.
type Operation func(ctx context.Context, rc *RequestContext) (any, error)

// TargetKind selects how DISPATCH finds its operation.
type TargetKind int

const (
	// TargetMethod dispatches by HTTP verb through the supported methods.
	TargetMethod TargetKind = iota
	// TargetStatic calls Handler whatever the verb.
	TargetStatic
)

// Target is the dispatch target of one pipeline.
type Target struct {
	Kind    TargetKind
	Name    string
	Handler Operation
}

// RequestContext is the per-request state shared by every stage.
type RequestContext struct {
	Request *http.Request
	// Method is the lower-cased HTTP verb.
	Method string
	// ID is the {id} route variable, empty when absent.
	ID string
	// Query holds the query-string parameters.
	Query url.Values
	// Body is the decoded JSON object body, nil when the body is empty.
	Body map[string]any
	// Collection accumulates results for redaction and the response.
	Collection []any
	// List is the resolved list query of a get operation.
	List *query.ListQuery
	// Resource is the resource serving the request.
	Resource *Resource
	// Logger is the resource logger.
	Logger *slog.Logger

	key    string
	values map[string]any
}

// Context returns the request context.
func (rc *RequestContext) Context() context.Context {
	return rc.Request.Context()
}

// Value returns a per-request value. The resource's collection key names the
// accumulated collection itself.
func (rc *RequestContext) Value(name string) (any, bool) {
	if name == rc.key {
		return rc.Collection, true
	}
	v, ok := rc.values[name]
	return v, ok
}

// SetValue stores a per-request value for later stages. Setting the
// collection key replaces the collection when value is a []any.
func (rc *RequestContext) SetValue(name string, value any) {
	if name == rc.key {
		if c, ok := value.([]any); ok {
			rc.Collection = c
			return
		}
	}
	if rc.values == nil {
		rc.values = make(map[string]any)
	}
	rc.values[name] = value
}

// pipeline is the ordered middleware chain mounted on one route pair.
type pipeline struct {
	res    *Resource
	target Target
	stages []Middleware
}

func (r *Resource) newPipeline(target Target) *pipeline {
	p := &pipeline{res: r, target: target}

	stages := make([]Middleware, 0, len(r.cfg.Initializers)+len(r.cfg.Mutators)+4)
	stages = append(stages, p.init)
	stages = append(stages, r.cfg.Initializers...)
	stages = append(stages, p.dispatch)
	stages = append(stages, r.cfg.Mutators...)
	stages = append(stages, p.redact, p.respond)
	p.stages = stages

	return p
}

// ServeHTTP implements http.Handler.
func (p *pipeline) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, err := readBody(w, req)
	if err != nil {
		p.res.log.Debug("rejected request body", "path", req.URL.Path, "error", err)
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	rc := &RequestContext{
		Request:  req,
		Method:   strings.ToLower(req.Method),
		ID:       mux.Vars(req)["id"],
		Query:    req.URL.Query(),
		Body:     body,
		Resource: p.res,
		Logger:   p.res.log,
		key:      p.res.cfg.Key,
	}

	for _, stage := range p.stages {
		if stage(w, rc) == Halt {
			return
		}
	}
}

// init makes sure the accumulator exists.
func (p *pipeline) init(_ http.ResponseWriter, rc *RequestContext) Outcome {
	if rc.Collection == nil {
		rc.Collection = []any{}
	}
	return Continue
}

func (p *pipeline) dispatch(w http.ResponseWriter, rc *RequestContext) Outcome {
	op := p.target.Handler
	if p.target.Kind == TargetMethod {
		var ok bool
		op, ok = p.res.operation(rc.Method)
		if !ok {
			httputil.WriteBadRequest(w, ErrUnsupportedMethod.Error())
			return Halt
		}
	}

	result, err := op(rc.Context(), rc)
	if err != nil {
		level := slog.LevelWarn
		var ve *ValidationError
		if errors.As(err, &ve) {
			level = slog.LevelDebug
		}
		rc.Logger.Log(rc.Context(), level, "operation failed",
			"method", rc.Method, "target", p.targetName(rc), "id", rc.ID, "error", err)
		httputil.WriteBadRequest(w, errorMessage(err))
		return Halt
	}

	rc.Collection = append(rc.Collection, result)
	return Continue
}

// redact strips private fields. Only the first accumulated batch survives.
func (p *pipeline) redact(_ http.ResponseWriter, rc *RequestContext) Outcome {
	if len(rc.Collection) == 0 {
		return Continue
	}
	fields := p.res.privateFields()
	if len(fields) == 0 {
		return Continue
	}
	rc.Collection = shape.Redact(shape.Batch(rc.Collection[0]), fields)
	return Continue
}

func (p *pipeline) respond(w http.ResponseWriter, rc *RequestContext) Outcome {
	httputil.WriteOK(w, shape.Shape(rc.Collection))
	return Continue
}

func (p *pipeline) targetName(rc *RequestContext) string {
	if p.target.Kind == TargetStatic {
		return p.target.Name
	}
	return rc.Method
}

// readBody decodes a JSON object body. An empty body yields nil.
func readBody(w http.ResponseWriter, req *http.Request) (map[string]any, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, MaxBodySize))
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return body, nil
}
