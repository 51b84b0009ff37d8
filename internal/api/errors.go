package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the status codes the UI branches on. 401 means the
// stored token is no longer good and the user must re-authenticate; 403
// means the resource exists but is not visible to the caller; 404 means it
// does not exist.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response, carrying the server's message when it
// sent one. It unwraps to the matching sentinel so callers can branch with
// errors.Is while the message stays available for display.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	}
	return nil
}

// ValidationError is a 422 response with a field-keyed map of messages,
// one or more per field.
type ValidationError struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// FieldMessages flattens the field map to one message per field, which is
// what the forms render inline.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, msgs := range e.Fields {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}
