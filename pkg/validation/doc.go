// Package validation checks decoded JSON documents against a JSON Schema.
//
// Documents may come from encoding/json or gopkg.in/yaml.v3; they are
// normalized to JSON types before validation. Every violation is reported as
// a FieldError whose Field is a dot path with bracketed indices, such as
// "resources[0].supports[1]".
package validation
