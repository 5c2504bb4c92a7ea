package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by a service wraps one of these, so
// callers can branch with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrBadRequest           = errors.New("bad request")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbidden            = errors.New("forbidden")
	ErrConsistency          = errors.New("consistency violation")
)

// ServiceError represents a domain error with a stable code for API clients
type ServiceError struct {
	Kind    error
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func entityCode(entity, suffix string) string {
	return strings.ToUpper(strings.ReplaceAll(entity, " ", "_")) + "_" + suffix
}

// notFound builds e.g. LINE_ITEM_NOT_FOUND: "line item with id 5 not found"
func notFound(entity, field string, value interface{}) error {
	return newError(ErrNotFound, entityCode(entity, "NOT_FOUND"), "%s with %s %v not found", entity, field, value)
}

func alreadyExists(entity, field string, value interface{}) error {
	return newError(ErrAlreadyExists, entityCode(entity, "ALREADY_EXISTS"), "%s with %s %v already exists", entity, field, value)
}

func badRequest(code, format string, args ...interface{}) error {
	return newError(ErrBadRequest, code, format, args...)
}

func forbidden(format string, args ...interface{}) error {
	return newError(ErrForbidden, "FORBIDDEN", format, args...)
}

func authenticationFailed(format string, args ...interface{}) error {
	return newError(ErrAuthenticationFailed, "AUTHENTICATION_FAILED", format, args...)
}

func consistency(format string, args ...interface{}) error {
	return newError(ErrConsistency, "CONSISTENCY_ERROR", format, args...)
}

// lookupError maps a failed First/Take to NotFound, wrapping anything else
func lookupError(err error, entity, field string, value interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, field, value)
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}

// ErrorCode returns the stable code carried by a service error, or "" if err
// is not one.
func ErrorCode(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
