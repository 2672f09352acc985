package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Ticket lookups and mutations
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrInvalidRouting    = errors.New("invalid ticket routing")
	ErrInvalidStatus     = errors.New("invalid ticket status")
	ErrReplyRequired     = errors.New("reply body is required")
	ErrCategoryTooLong   = errors.New("category exceeds maximum length")
	ErrTooManyCategories = errors.New("too many categories")

	// Feed loading
	ErrFeedShape       = errors.New("feed must be an array of tickets or an object with a tickets array")
	ErrFeedUnavailable = errors.New("ticket feed unavailable")
	ErrFeedInvalidJSON = errors.New("ticket feed is not valid JSON")

	// Override storage
	ErrStorageUnavailable = errors.New("override storage unavailable")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}

// LoadError reports a failed ticket load. Message is meant for the operator,
// Cause carries the underlying failure.
type LoadError struct {
	Source  string
	Message string
	Cause   error
}

func NewLoadError(source string, cause error) *LoadError {
	return &LoadError{
		Source:  source,
		Message: "Could not load tickets JSON.",
		Cause:   cause,
	}
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %v", e.Message, e.Source, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
