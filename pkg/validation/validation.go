package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles a JSON Schema document registered under url. Schemas
// without a $schema keyword are read as draft 2020-12.
func Compile(url string, def []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(def)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks doc and returns every violation, or nil when it is valid.
func (s *Schema) Validate(doc any) []*FieldError {
	// Round-trip so that the validator only sees JSON types.
	var normalized any
	data, err := json.Marshal(doc)
	if err == nil {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&normalized)
	}
	if err != nil {
		return []*FieldError{{Message: err.Error()}}
	}

	err = s.schema.Validate(normalized)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []*FieldError{{Message: err.Error()}}
	}
	var out []*FieldError
	collect(ve, &out)
	return out
}

// collect flattens the leaves of a validation error tree.
func collect(err *jsonschema.ValidationError, out *[]*FieldError) {
	if len(err.Causes) == 0 {
		*out = append(*out, &FieldError{
			Field:   fieldFromPointer(err.InstanceLocation),
			Keyword: err.KeywordLocation,
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collect(cause, out)
	}
}
