package validation

import "errors"

// Validation errors. The API layer maps all of these to HTTP 400 with a
// generic message; the offending text is never echoed back to the caller.
var (
	// ErrEmptyInput indicates the command text was empty or whitespace-only.
	ErrEmptyInput = errors.New("command text is empty")

	// ErrInputTooLong indicates the command text exceeded MaxCommandLength.
	ErrInputTooLong = errors.New("command text exceeds maximum length")

	// ErrMaliciousPattern indicates the command text matched the structural
	// attack deny-list or was not valid UTF-8.
	ErrMaliciousPattern = errors.New("command text contains a disallowed pattern")
)
