package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyCategory    = errors.New("category is required")
	ErrEmptyName        = errors.New("name is required")
	ErrInvalidKind      = errors.New("type must be either income or expense")
	ErrMissingDate      = errors.New("date is required")
	ErrEmptyTargetDate  = errors.New("target date must be a date or null")
	ErrNoFields         = errors.New("no fields to update")
	ErrReadOnlyField    = errors.New("field cannot be updated directly")
	ErrInvalidRange     = errors.New("start date must not be after end date")
)

// ErrorKind names a failure class for transports.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindReference  ErrorKind = "reference"
	ErrorKindStorage    ErrorKind = "storage"
	ErrorKindInternal   ErrorKind = "internal"
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports that the addressed entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ReferenceError reports a foreign key that does not resolve.
type ReferenceError struct {
	Entity string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Entity, e.ID)
}

// StorageError wraps a collaborator failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		reference  *ReferenceError
		storage    *StorageError
	)
	switch {
	case errors.As(err, &validation):
		return ErrorKindValidation
	case errors.As(err, &notFound):
		return ErrorKindNotFound
	case errors.As(err, &reference):
		return ErrorKindReference
	case errors.As(err, &storage):
		return ErrorKindStorage
	default:
		return ErrorKindInternal
	}
}

func IsNotFound(err error) bool {
	return KindOf(err) == ErrorKindNotFound
}
