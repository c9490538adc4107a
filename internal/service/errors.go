// Package service implements the application's business operations,
// coordinating stores, the job queue, and external collaborators.
package service

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the service layer
var (
	// ErrStoryNotFound indicates that the story does not exist.
	ErrStoryNotFound = errors.New("story not found")

	// ErrWordNotFound indicates that the word does not exist.
	ErrWordNotFound = errors.New("word not found")
)

// ServiceError wraps errors from the service layer with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_story_generation").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
