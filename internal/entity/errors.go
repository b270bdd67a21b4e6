package entity

import "errors"

// Resolution errors. The API layer maps ErrDomainNotPermitted to HTTP
// 403 and the others to HTTP 400.
var (
	// ErrUnknownEntity indicates a slot value was present but not found
	// in the lexicon. The resolver never guesses.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrOutOfRange indicates a numeric slot fell outside the configured
	// bounds for its parameter.
	ErrOutOfRange = errors.New("value out of range")

	// ErrDomainNotPermitted indicates resolution produced an entity
	// outside the allowed device classes.
	ErrDomainNotPermitted = errors.New("domain not permitted")
)
