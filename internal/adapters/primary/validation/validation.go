// Package validation turns raw request input into typed values or field
// errors the HTTP error handler can render.
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request bodies that check themselves.
type Validatable interface {
	Validate() error
}

// Validator accumulates field errors.
type Validator struct {
	errs *apperrors.ValidationErrors
}

func NewValidator() *Validator {
	return &Validator{errs: apperrors.NewValidationErrors()}
}

func (v *Validator) HasErrors() bool {
	return v.errs.HasErrors()
}

// Errors exposes the collected field errors.
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errs
}

// Err returns the collected errors, or nil when there are none.
func (v *Validator) Err() error {
	if v.HasErrors() {
		return v.errs
	}
	return nil
}

// Required flags a blank value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errs.Add(field, "This field is required")
	}
	return v
}

// Check adds message to field unless ok.
func (v *Validator) Check(field string, ok bool, message string) *Validator {
	if !ok {
		v.errs.Add(field, message)
	}
	return v
}

// OneOf flags a non-empty value outside allowed. Matching is exact, so
// "open" is not "Open".
func OneOf[T ~string](v *Validator, field, value string, allowed []T) *Validator {
	if value == "" {
		return v
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if string(a) == value {
			return v
		}
		names[i] = string(a)
	}
	v.errs.Add(field, "Must be one of: "+strings.Join(names, ", "))
	return v
}

// DecodeAndValidate reads exactly one JSON object into T, rejecting unknown
// fields, then runs T's Validate method when it has one.
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Request body must contain a single JSON object")
	}

	if val, ok := any(&req).(Validatable); ok {
		if err := val.Validate(); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// ParseID parses a positive ticket id from a path or form value.
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidator().Check(field, false, "Invalid ticket ID").Errors()
	}
	return id, nil
}

// QueryParam returns the named query value, or nil when absent or empty.
func QueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}
