package entity

import "github.com/aldersync/voice-core/internal/intent"

// Domain is the device class portion of an entity ID (the part before
// the first dot, e.g. "light" in "light.all_lights").
type Domain string

// Allowed domains. Resolution fails for any entity outside this set;
// this is the authorisation boundary for which device classes may ever
// be actuated.
const (
	DomainLight       Domain = "light"
	DomainClimate     Domain = "climate"
	DomainLock        Domain = "lock"
	DomainMediaPlayer Domain = "media_player"
	DomainScene       Domain = "scene"
)

// allowedDomains is the closed set of actuatable device classes.
var allowedDomains = map[Domain]bool{
	DomainLight:       true,
	DomainClimate:     true,
	DomainLock:        true,
	DomainMediaPlayer: true,
	DomainScene:       true,
}

// DomainAllowed reports whether d may ever be actuated.
func DomainAllowed(d Domain) bool {
	return allowedDomains[d]
}

// ResolvedEntities is the resolver's output: a concrete addressable
// entity ID plus the parameters the dispatcher will send with it.
// EntityID is always a canonical identifier in the controller's
// namespace, never a raw user phrase.
type ResolvedEntities struct {
	Intent   intent.Kind
	EntityID string
	Domain   Domain

	// NumericParams carries range-checked numeric slots, keyed by the
	// controller's parameter name (e.g. "temperature", "brightness").
	NumericParams map[string]float64

	// TextParams carries free-text parameters that are forwarded
	// verbatim (e.g. a media search query). Never used for addressing.
	TextParams map[string]string
}
