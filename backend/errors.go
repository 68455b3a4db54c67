package backend

import "fmt"

// APIError is a non-2xx response from the backend.
type APIError struct {
	// Op is the failed operation ("create_section", "assign_teacher", ...).
	Op string

	// StatusCode is the HTTP status the backend returned.
	StatusCode int

	// Message is the backend's error body, truncated.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// DecodeError is a backend payload that failed the parse/validate boundary.
//
// The status poller treats a DecodeError like any other fetch failure: the
// tick's merge is skipped and polling continues.
type DecodeError struct {
	// Entity names the payload kind that failed ("section", "status", ...).
	Entity string

	// Err is the underlying parse or validation error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error { return e.Err }
