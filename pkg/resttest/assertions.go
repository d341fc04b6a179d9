package resttest

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/getmockd/restkit/pkg/pathutil"
)

// Response is a captured HTTP response.
type Response struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// JSON decodes the body. It returns nil for an invalid body.
func (r *Response) JSON() any {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil
	}
	return v
}

// Docs returns the body as a list of documents. A single object body is
// returned as a one-element list.
func (r *Response) Docs() []map[string]any {
	switch v := r.JSON().(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// JSONField extracts a dot-path field from an object body.
func (r *Response) JSONField(field string) (any, bool) {
	obj, ok := r.JSON().(map[string]any)
	if !ok {
		return nil, false
	}
	return pathutil.Get(obj, field)
}

// AssertStatus asserts the status code.
func (r *Response) AssertStatus(t testing.TB, expected int) *Response {
	t.Helper()
	if r.Status != expected {
		t.Errorf("status mismatch\nexpected: %d\nactual: %d\nbody: %s", expected, r.Status, r.Body)
	}
	return r
}

// AssertJSONField asserts that a field of an object body has the expected
// value. JSON numbers compare as float64.
func (r *Response) AssertJSONField(t testing.TB, field string, expected any) *Response {
	t.Helper()

	actual, ok := r.JSONField(field)
	if !ok {
		t.Errorf("JSON field %q not found in response body: %s", field, r.Body)
		return r
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("JSON field %q mismatch\nexpected: %v (%T)\nactual: %v (%T)",
			field, expected, expected, actual, actual)
	}
	return r
}

// AssertNoField asserts that an object body, or every document of a list
// body, lacks field.
func (r *Response) AssertNoField(t testing.TB, field string) *Response {
	t.Helper()
	for _, doc := range r.Docs() {
		if _, ok := pathutil.Get(doc, field); ok {
			t.Errorf("unexpected JSON field %q in response body: %s", field, r.Body)
			return r
		}
	}
	return r
}

// AssertLen asserts the number of documents in the body.
func (r *Response) AssertLen(t testing.TB, expected int) *Response {
	t.Helper()
	if n := len(r.Docs()); n != expected {
		t.Errorf("document count mismatch\nexpected: %d\nactual: %d\nbody: %s", expected, n, r.Body)
	}
	return r
}
