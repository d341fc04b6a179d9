package config

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/getmockd/restkit/pkg/validation"
)

// SchemaID is the $id of the configuration JSON Schema.
const SchemaID = "https://getmockd.github.io/restkit/config.schema.json"

// SchemaJSON is the JSON Schema of a configuration file. Editors can use it
// for completion; `restkit schema` prints it.
//
//go:embed schema.json
var SchemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*validation.Schema, error) {
	return validation.Compile(SchemaID, SchemaJSON)
})

// CheckSchema validates a decoded configuration document, before defaults,
// against SchemaJSON. Every violation is a *ValidationError joined into the
// returned error.
func CheckSchema(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("configuration schema: %w", err)
	}

	var errs []error
	for _, fe := range schema.Validate(doc) {
		field := fe.Field
		if field == "" {
			field = "(root)"
		}
		errs = append(errs, &ValidationError{Field: field, Message: fe.Message})
	}
	return errors.Join(errs...)
}
