// Package shared contains the error taxonomy shared by every domain package.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// ErrNotFound is returned when a lookup by id finds nothing.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when a create violates a uniqueness rule.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrForeignKey is returned when a referenced entity does not exist.
	ErrForeignKey = errors.New("referenced entity does not exist")

	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation error")

	// ErrNoData is returned when an aggregate is requested over an empty set.
	ErrNoData = errors.New("no data")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "student", "test", "result"
	Op      string // operation that failed, e.g. "Create", "Get"
	Kind    error  // base error for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against both Kind and Err.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// NotFound builds a NotFoundError for the given domain.
func NotFound(domain, op, message string) *DomainError {
	return NewDomainError(domain, op, ErrNotFound, message)
}

// Conflict builds a ConflictError for the given domain.
func Conflict(domain, op, message string) *DomainError {
	return NewDomainError(domain, op, ErrAlreadyExists, message)
}

// ForeignKey builds a ForeignKeyError for the given domain.
func ForeignKey(domain, op, message string) *DomainError {
	return NewDomainError(domain, op, ErrForeignKey, message)
}

// Validation builds a ValidationError for the given domain.
func Validation(domain, op, message string) *DomainError {
	return NewDomainError(domain, op, ErrValidation, message)
}

// NoData builds a NoDataError for the given domain.
func NoData(domain, op, message string) *DomainError {
	return NewDomainError(domain, op, ErrNoData, message)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsForeignKey checks if the error is a missing-reference error.
func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNoData checks if the error comes from an aggregate over an empty set.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// Message extracts the human-readable part of a domain error. For anything
// else it falls back to err.Error().
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
