package resource

import (
	"errors"
	"net/http"
)

// Response messages.
const (
	MsgUnsupportedMethod = "This HTTP Method is unsupported"
	MsgDefaultError      = "There was an error processing your request."
	MsgMissingBody       = "Missing required post body"
	MsgIDRequired        = "A valid id is required for this type of request"
)

// ErrUnsupportedMethod is reported when a verb is not in the supported set.
var ErrUnsupportedMethod = errors.New(MsgUnsupportedMethod)

// ValidationError is returned by operations when the request is incomplete.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// errorMessage is the client-facing text of a failed operation.
func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgDefaultError
}
