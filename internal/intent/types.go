package intent

// Kind is the canonical action category a command maps to.
type Kind string

// Recognised intent kinds. KindUnknown is returned when no rule matches;
// it is a valid classification outcome, not an error.
const (
	KindTurnOnLight    Kind = "turn_on_light"
	KindTurnOffLight   Kind = "turn_off_light"
	KindSetBrightness  Kind = "set_brightness"
	KindSetTemperature Kind = "set_temperature"
	KindPlayMedia      Kind = "play_media"
	KindStopMedia      Kind = "stop_media"
	KindActivateScene  Kind = "activate_scene"
	KindLockDoor       Kind = "lock_door"
	KindUnlockDoor     Kind = "unlock_door"
	KindUnknown        Kind = "unknown_command"
)

// Slot is a named piece of text captured from a command by the winning
// rule. Present distinguishes "the slot did not appear in the input" from
// "the slot appeared but captured an empty string", so downstream
// defaulting can tell the two apart.
type Slot struct {
	Value   string
	Present bool
}

// ParsedIntent is the classifier's output for one command.
//
// For KindUnknown, Slots is nil and Text carries the input verbatim so
// the caller can echo it back for clarification.
type ParsedIntent struct {
	Intent Kind
	Slots  map[string]Slot
	Text   string
}

// IsUnknown reports whether no rule matched the command.
func (p ParsedIntent) IsUnknown() bool {
	return p.Intent == KindUnknown
}

// Slot returns the named slot, or a zero (absent) Slot if the rule did
// not declare it.
func (p ParsedIntent) Slot(name string) Slot {
	return p.Slots[name]
}
