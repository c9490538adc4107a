// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidWordStatus is returned when a word status is not valid.
	ErrInvalidWordStatus = errors.New("invalid word status")

	// ErrVocabularyAssessmentRequired is returned when a user requests a
	// story without any known vocabulary on record. Story generation is
	// built around the learner's vocabulary, so an assessment has to run
	// first.
	ErrVocabularyAssessmentRequired = errors.New("vocabulary assessment required")

	// ErrDailyLimitReached is returned when a user has started the maximum
	// number of story generations allowed per day.
	ErrDailyLimitReached = errors.New("daily story generation limit reached")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
