package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldError is one schema violation.
type FieldError struct {
	// Field is the path of the offending value, empty for the document itself.
	Field string `json:"field,omitempty"`
	// Keyword is the schema location that failed, e.g. "/properties/port/maximum".
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// fieldFromPointer converts a JSON Pointer to a field path. Numeric tokens
// become indices of the preceding field.
func fieldFromPointer(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	var b strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if _, err := strconv.Atoi(tok); err == nil && b.Len() > 0 {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(pointerUnescaper.Replace(tok))
	}
	return b.String()
}
