package session

import "errors"

// Admission errors. The API layer maps both to HTTP 429; the messages
// distinguish "start a new session" from "wait and retry".
var (
	// ErrSessionExpired indicates the session's idle window or maximum
	// duration has elapsed. The session record is deleted; the caller
	// must start a new session.
	ErrSessionExpired = errors.New("session expired")

	// ErrQuotaExceeded indicates the session has used its full command
	// quota. The count is not incremented by a refused admit.
	ErrQuotaExceeded = errors.New("session command quota exceeded")
)
