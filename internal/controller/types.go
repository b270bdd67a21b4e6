package controller

import "github.com/aldersync/voice-core/internal/intent"

// ErrorKind is the closed set of dispatch failure categories. The raw
// controller response never travels past this boundary.
type ErrorKind string

const (
	// ErrorNone means the dispatch succeeded.
	ErrorNone ErrorKind = ""

	// ErrorTimeout means the controller did not answer within the
	// configured request timeout.
	ErrorTimeout ErrorKind = "controller_timeout"

	// ErrorUnreachable means the request never reached the controller
	// (DNS failure, connection refused).
	ErrorUnreachable ErrorKind = "controller_unreachable"

	// ErrorAuthFailure means the controller refused our credentials
	// (401 or 403).
	ErrorAuthFailure ErrorKind = "controller_auth_failure"

	// ErrorRejected means the controller answered with any other
	// non-2xx status.
	ErrorRejected ErrorKind = "controller_rejected"
)

// DispatchResult is the terminal outcome of one actuation attempt.
// It is returned to the caller and never mutated afterwards.
type DispatchResult struct {
	Success   bool        `json:"success"`
	Intent    intent.Kind `json:"intent"`
	EntityID  string      `json:"entity_id"`
	Message   string      `json:"message"`
	ErrorKind ErrorKind   `json:"error_kind,omitempty"`
}
