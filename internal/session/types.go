package session

import "time"

// Session is one caller's bounded sequence of commands, tracked for
// quota and expiry purposes. The ID is opaque: generated by the caller
// or assigned by the API layer on first contact.
type Session struct {
	ID           string
	CommandCount int
	CreatedAt    time.Time
	LastSeenAt   time.Time
}
