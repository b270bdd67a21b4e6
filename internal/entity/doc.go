// Package entity resolves parsed intents into concrete controller
// entities.
//
// The lexicon (configs/lexicon.yaml) is the single source of truth for
// which phrases map to which entity IDs; the resolver never constructs an
// ID from raw user text. When a command names no room or device, the
// intent's documented default is substituted; when it names one the
// lexicon does not know, resolution fails rather than guessing.
//
// Resolution is also the authorisation boundary for device classes:
// every resolved entity must belong to an allowed domain (lights,
// climate, locks, media players, scenes). Anything else is refused with
// ErrDomainNotPermitted before a controller request is ever built.
package entity
