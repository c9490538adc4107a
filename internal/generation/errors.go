package generation

import "errors"

// Common errors returned by the generation package. Transport failures and
// unusable provider output carry distinct identities so monitoring can
// separate "provider down" from "provider changed response shape".
var (
	// ErrGenerationFailed is returned when generation fails for any general reason.
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed
	// or is structurally malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrNoStoryText is returned when the provider call succeeds but
	// produces no story text. Empty output is a hard failure, never an
	// empty success.
	ErrNoStoryText = errors.New("no story text returned")

	// ErrContentBlocked is returned when the LLM blocks the content due to
	// safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when a generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
