package intent

import "errors"

// Rule table load errors. All of these are fatal at startup; the table is
// static once loaded and never fails at classification time.
var (
	// ErrEmptyTable indicates the rules file declared no rules.
	ErrEmptyTable = errors.New("rule table is empty")

	// ErrDuplicatePriority indicates two rules share a priority, which
	// would make first-match ordering ambiguous.
	ErrDuplicatePriority = errors.New("duplicate rule priority")

	// ErrInvalidPattern indicates a rule's trigger pattern failed to compile.
	ErrInvalidPattern = errors.New("invalid trigger pattern")

	// ErrInvalidSlotPattern indicates a slot pattern failed to compile or
	// does not declare exactly one capture group.
	ErrInvalidSlotPattern = errors.New("invalid slot pattern")
)
