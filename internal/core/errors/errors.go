package errors

import (
	"errors"
	"fmt"
)

var (
	// Tickets
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrNameRequired    = errors.New("name is required")
	ErrIssueRequired   = errors.New("issue is required")
	ErrInvalidPriority = errors.New("invalid ticket priority")
	ErrInvalidStatus   = errors.New("invalid ticket status")

	// Storage
	ErrKeyNotFound    = errors.New("storage key not found")
	ErrCorruptStorage = errors.New("persisted data is malformed")

	// Pages
	ErrUnknownPage = errors.New("unknown page")

	// Requests
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError is an error with a fixed HTTP rendering.
type AppError struct {
	Err        error
	Message    string
	Code       string
	StatusCode int
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

// NewBadRequestError reports a request the server could not read.
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

// ValidationErrors collects messages per form field. Sentinels added with
// AddCause stay visible to errors.Is.
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
	causes []error
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

// AddCause records a field error backed by a sentinel so errors.Is keeps working.
func (v *ValidationErrors) AddCause(field string, cause error) {
	v.Add(field, cause.Error())
	v.causes = append(v.causes, cause)
}

func (v *ValidationErrors) Unwrap() []error {
	return v.causes
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
