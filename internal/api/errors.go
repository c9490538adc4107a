package api

import (
	"errors"
	"net/http"

	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/service"
	"github.com/lingotale/lingotale-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Quota errors
	case errors.Is(err, domain.ErrDailyLimitReached):
		return http.StatusTooManyRequests

	// Not found errors
	case errors.Is(err, store.ErrWordNotFound),
		errors.Is(err, store.ErrStoryNotFound),
		errors.Is(err, service.ErrWordNotFound),
		errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, job.ErrJobNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidWordStatus),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "You do not own this resource"

	case errors.Is(err, domain.ErrDailyLimitReached):
		return "Daily story generation limit reached"

	case errors.Is(err, store.ErrWordNotFound), errors.Is(err, service.ErrWordNotFound):
		return "Word not found"

	case errors.Is(err, store.ErrStoryNotFound), errors.Is(err, service.ErrStoryNotFound):
		return "Story not found"

	case errors.Is(err, job.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, domain.ErrInvalidWordStatus):
		return "Invalid word status"

	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
