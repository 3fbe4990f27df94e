package apperror

import (
	"errors"
	"fmt"
)

// Kinds of failure surfaced to callers. Match them with errors.Is.
var (
	ErrConnection = errors.New("connection failure")
	ErrValidation = errors.New("validation failure")
	ErrQuery      = errors.New("query failure")
	ErrNotFound   = errors.New("not found")
)

type AppError struct {
	Kind    error  // one of the Err* sentinels
	Message string // human readable
	Field   string // offending input field, validation only
	Query   string // statement text, query failures only
	Err     error  // underlying driver or engine error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

// Is lets errors.Is match both the kind sentinel and the wrapped cause.
func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// KindName is the machine readable name used in API responses.
func (e *AppError) KindName() string {
	switch e.Kind {
	case ErrConnection:
		return "connection_failure"
	case ErrValidation:
		return "validation_failure"
	case ErrQuery:
		return "query_failure"
	case ErrNotFound:
		return "not_found"
	}
	return "internal_error"
}

func ConnectionFailed(err error) *AppError {
	return &AppError{
		Kind:    ErrConnection,
		Message: fmt.Sprintf("database connection failed: %v", err),
		Err:     err,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Kind:    ErrValidation,
		Message: message,
		Field:   field,
	}
}

// QueryFailed keeps the engine message and the statement that produced it.
func QueryFailed(err error, query string) *AppError {
	return &AppError{
		Kind:    ErrQuery,
		Message: fmt.Sprintf("query failed: %v", err),
		Query:   query,
		Err:     err,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// As extracts the *AppError from err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
