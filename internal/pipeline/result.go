package pipeline

import (
	"github.com/aldersync/voice-core/internal/audit"
	"github.com/aldersync/voice-core/internal/controller"
	"github.com/aldersync/voice-core/internal/intent"
)

// Outcome categories recorded in the audit trail and emitted on the
// event stream. Dispatch failures use the controller ErrorKind values
// directly ("controller_timeout" and friends).
const (
	OutcomeSuccess            = "success"
	OutcomeUnknownCommand     = "unknown_command"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeUnknownEntity      = "unknown_entity"
	OutcomeOutOfRange         = "out_of_range"
	OutcomeDomainNotPermitted = "domain_not_permitted"
	OutcomeSessionExpired     = "session_expired"
	OutcomeQuotaExceeded      = "quota_exceeded"
)

// Result is the terminal outcome of one pipeline run. Exactly one is
// produced per command; it is never mutated after Process returns.
type Result struct {
	// Command echoes the caller's original text. Empty when validation
	// rejected the input, so rejected text never travels further.
	Command string

	// SessionID is the session the command ran (or tried to run) under.
	SessionID string

	// Intent is the classified intent, or KindUnknown.
	Intent intent.Kind

	// EntityID is the resolved target, when resolution was reached.
	EntityID string

	// Parameters carries the resolved numeric and text parameters.
	Parameters map[string]any

	// Dispatch holds the controller outcome when the dispatch stage ran.
	Dispatch *controller.DispatchResult

	// Stage is the furthest pipeline stage reached.
	Stage audit.Stage

	// Outcome is the terminal outcome category.
	Outcome string

	// Err is the stage error that short-circuited the run, nil for
	// success and for unknown commands.
	Err error
}

// Succeeded reports whether the command was dispatched successfully.
func (r Result) Succeeded() bool {
	return r.Dispatch != nil && r.Dispatch.Success
}
