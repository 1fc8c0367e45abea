package errors

import "fmt"

// APIError is the closed error shape the HTTP boundary is allowed to expose.
// Handlers return it when a failure carries a deliberate public status and
// message; anything else is rendered as a generic 500 and only logged.
type APIError struct {
	Status  int
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewAPIError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

// WithDetails attaches extra public fields merged into the response body
// next to "message".
func (e *APIError) WithDetails(details map[string]any) *APIError {
	e.Details = details
	return e
}
