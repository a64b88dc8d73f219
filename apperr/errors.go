// Package apperr defines the error kinds shared by the stores, services and handlers.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports malformed or missing input. It maps to 400.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func NewValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{Message: msg, Fields: flds}
}

func (err *ValidationError) Error() string {
	return err.Message
}

// NotFoundError reports an id that does not resolve to a record. It maps to 404.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func (err *NotFoundError) Error() string {
	return err.Resource + " not found"
}

// StoreError wraps any persistence failure. It maps to 500 and is never retried.
type StoreError struct {
	Op  string
	Err error
}

// Store wraps err as a StoreError with a stack trace. A nil err stays nil, and
// errors that already carry a kind pass through untouched.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: errors.WithStack(err)}
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", err.Op, err.Err)
}

func (err *StoreError) Unwrap() error {
	return err.Err
}

// Details returns the message of the underlying driver error.
func (err *StoreError) Details() string {
	return errors.Cause(err.Err).Error()
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
