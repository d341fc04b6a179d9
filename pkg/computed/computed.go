// Package computed adds configuration-driven behaviour to resources: computed
// fields evaluated with expr-lang expressions, and saved queries exposed as
// static routes.
package computed

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/restkit/pkg/pathutil"
	"github.com/getmockd/restkit/pkg/resource"
	"github.com/getmockd/restkit/pkg/shape"
	"github.com/getmockd/restkit/pkg/store"
)

// Fields is a compiled set of computed fields.
type Fields struct {
	fields []field
}

type field struct {
	path    string
	source  string
	program *vm.Program
}

// Compile compiles a map of field path to expression. Fields are evaluated in
// path order, so a field can read any field computed before it. Expressions
// see the document's top-level fields as variables; unknown names are nil.
func Compile(defs map[string]string) (*Fields, error) {
	paths := make([]string, 0, len(defs))
	for p := range defs {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	f := &Fields{fields: make([]field, 0, len(paths))}
	for _, p := range paths {
		if p == "" {
			return nil, errors.New("computed field name cannot be empty")
		}
		program, err := expr.Compile(defs[p], expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("computed field %q: compile %q: %w", p, defs[p], err)
		}
		f.fields = append(f.fields, field{path: p, source: defs[p], program: program})
	}
	return f, nil
}

// Len returns the number of computed fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.fields)
}

// Apply evaluates every field against doc and stores the results in doc.
// It stops at the first failing expression.
func (f *Fields) Apply(doc map[string]any) error {
	if doc == nil {
		return nil
	}
	for _, fd := range f.fields {
		val, err := expr.Run(fd.program, doc)
		if err != nil {
			return fmt.Errorf("computed field %q: eval %q: %w", fd.path, fd.source, err)
		}
		pathutil.Set(doc, fd.path, val)
	}
	return nil
}

// Mutator returns a resource middleware applying the fields to every document
// accumulated by the request. Results without an _id, such as delete counts
// and status messages, are not documents and stay untouched. A failing
// document is logged and left as is.
func (f *Fields) Mutator(log *slog.Logger) resource.Middleware {
	return func(_ http.ResponseWriter, rc *resource.RequestContext) resource.Outcome {
		if f.Len() == 0 {
			return resource.Continue
		}
		for _, entry := range rc.Collection {
			for _, item := range shape.Batch(entry) {
				doc, ok := pathutil.AsMap(item)
				if !ok {
					continue
				}
				if _, isDoc := doc[store.IDField]; !isDoc {
					continue
				}
				if err := f.Apply(doc); err != nil && log != nil {
					log.Warn("computed field failed", "id", doc[store.IDField], "error", err)
				}
			}
		}
		return resource.Continue
	}
}
