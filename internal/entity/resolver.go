package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aldersync/voice-core/internal/infrastructure/config"
	"github.com/aldersync/voice-core/internal/intent"
)

// Default entity IDs used when a command names no room or device.
const (
	defaultLightEntity   = "light.all_lights"
	defaultClimateEntity = "climate.main_thermostat"
	defaultLockEntity    = "lock.front_door"
	defaultMediaPlayer   = "media_player.spotify"
)

// defaultTemperature is used when a temperature command carries no
// numeric value ("set the temperature" with nothing else).
const defaultTemperature = 70

// defaultBrightness is full brightness, used when a brightness command
// carries no numeric value.
const defaultBrightness = 255

// Resolver converts parsed intents into concrete controller entities,
// applying synonym lookup, default fallbacks, numeric range checks, and
// the domain allow-list.
type Resolver struct {
	lexicon *Lexicon
	limits  config.LimitsConfig
}

// NewResolver creates a resolver over the given lexicon and numeric limits.
func NewResolver(lexicon *Lexicon, limits config.LimitsConfig) *Resolver {
	return &Resolver{lexicon: lexicon, limits: limits}
}

// Resolve maps a parsed intent to a concrete entity and parameters.
//
// Fallback policy: when the intent's locality slot (room, door) is
// absent, the intent's documented default entity is substituted. When a
// slot is present but not found in the lexicon, resolution fails with
// ErrUnknownEntity rather than guessing.
//
// Parameters:
//   - parsed: Classifier output; must not be KindUnknown
//
// Returns:
//   - ResolvedEntities: Concrete entity ID and checked parameters
//   - error: ErrUnknownEntity, ErrOutOfRange, or ErrDomainNotPermitted
func (r *Resolver) Resolve(parsed intent.ParsedIntent) (ResolvedEntities, error) {
	var (
		resolved ResolvedEntities
		err      error
	)

	switch parsed.Intent {
	case intent.KindTurnOnLight, intent.KindTurnOffLight:
		resolved, err = r.resolveLight(parsed, nil)
	case intent.KindSetBrightness:
		resolved, err = r.resolveBrightness(parsed)
	case intent.KindSetTemperature:
		resolved, err = r.resolveTemperature(parsed)
	case intent.KindPlayMedia:
		resolved, err = r.resolvePlayMedia(parsed)
	case intent.KindStopMedia:
		resolved = ResolvedEntities{Intent: parsed.Intent, EntityID: defaultMediaPlayer}
	case intent.KindActivateScene:
		resolved, err = r.resolveScene(parsed)
	case intent.KindLockDoor, intent.KindUnlockDoor:
		resolved, err = r.resolveLock(parsed)
	default:
		return ResolvedEntities{}, fmt.Errorf("%w: intent %s is not resolvable", ErrUnknownEntity, parsed.Intent)
	}
	if err != nil {
		return ResolvedEntities{}, err
	}

	resolved.Domain = entityDomain(resolved.EntityID)
	if !DomainAllowed(resolved.Domain) {
		return ResolvedEntities{}, fmt.Errorf("%w: %s", ErrDomainNotPermitted, resolved.Domain)
	}

	return resolved, nil
}

// resolveLight finds the target light entity for on/off and brightness
// intents. Room takes precedence over a named light; with neither, the
// all-lights group is used.
func (r *Resolver) resolveLight(parsed intent.ParsedIntent, params map[string]float64) (ResolvedEntities, error) {
	out := ResolvedEntities{Intent: parsed.Intent, NumericParams: params}

	if room := parsed.Slot("room"); room.Present {
		entry, ok := r.lexicon.Room(room.Value)
		if !ok {
			return ResolvedEntities{}, fmt.Errorf("%w: room %q", ErrUnknownEntity, room.Value)
		}
		if entry.LightEntity == "" {
			return ResolvedEntities{}, fmt.Errorf("%w: room %q has no lights", ErrUnknownEntity, room.Value)
		}
		out.EntityID = entry.LightEntity
		return out, nil
	}

	if name := parsed.Slot("light_name"); name.Present {
		if id, ok := r.lexicon.Light(name.Value); ok {
			out.EntityID = id
			return out, nil
		}
		return ResolvedEntities{}, fmt.Errorf("%w: light %q", ErrUnknownEntity, name.Value)
	}

	out.EntityID = defaultLightEntity
	return out, nil
}

func (r *Resolver) resolveBrightness(parsed intent.ParsedIntent) (ResolvedEntities, error) {
	brightness := float64(defaultBrightness)
	if slot := parsed.Slot("brightness"); slot.Present {
		v, err := parseNumeric("brightness", slot.Value)
		if err != nil {
			return ResolvedEntities{}, err
		}
		brightness = v
	}
	if brightness < r.limits.BrightnessMin || brightness > r.limits.BrightnessMax {
		return ResolvedEntities{}, fmt.Errorf("%w: brightness %g (valid %g-%g)",
			ErrOutOfRange, brightness, r.limits.BrightnessMin, r.limits.BrightnessMax)
	}

	return r.resolveLight(parsed, map[string]float64{"brightness": brightness})
}

func (r *Resolver) resolveTemperature(parsed intent.ParsedIntent) (ResolvedEntities, error) {
	temperature := float64(defaultTemperature)
	if slot := parsed.Slot("temperature"); slot.Present {
		v, err := parseNumeric("temperature", slot.Value)
		if err != nil {
			return ResolvedEntities{}, err
		}
		temperature = v
	}
	if temperature < r.limits.TemperatureMin || temperature > r.limits.TemperatureMax {
		return ResolvedEntities{}, fmt.Errorf("%w: temperature %g (valid %g-%g)",
			ErrOutOfRange, temperature, r.limits.TemperatureMin, r.limits.TemperatureMax)
	}

	out := ResolvedEntities{
		Intent:        parsed.Intent,
		EntityID:      defaultClimateEntity,
		NumericParams: map[string]float64{"temperature": temperature},
	}

	if room := parsed.Slot("room"); room.Present {
		entry, ok := r.lexicon.Room(room.Value)
		if !ok {
			return ResolvedEntities{}, fmt.Errorf("%w: room %q", ErrUnknownEntity, room.Value)
		}
		if entry.ClimateEntity == "" {
			return ResolvedEntities{}, fmt.Errorf("%w: room %q has no thermostat", ErrUnknownEntity, room.Value)
		}
		out.EntityID = entry.ClimateEntity
	}

	return out, nil
}

func (r *Resolver) resolvePlayMedia(parsed intent.ParsedIntent) (ResolvedEntities, error) {
	out := ResolvedEntities{
		Intent:   parsed.Intent,
		EntityID: defaultMediaPlayer,
		TextParams: map[string]string{
			"media_content_type": "music",
		},
	}
	if query := parsed.Slot("query"); query.Present {
		out.TextParams["media_content_id"] = query.Value
	}
	return out, nil
}

func (r *Resolver) resolveScene(parsed intent.ParsedIntent) (ResolvedEntities, error) {
	name := parsed.Slot("scene_name")
	if !name.Present {
		return ResolvedEntities{}, fmt.Errorf("%w: no scene named", ErrUnknownEntity)
	}
	id, ok := r.lexicon.Scene(name.Value)
	if !ok {
		return ResolvedEntities{}, fmt.Errorf("%w: scene %q", ErrUnknownEntity, name.Value)
	}
	return ResolvedEntities{Intent: parsed.Intent, EntityID: id}, nil
}

func (r *Resolver) resolveLock(parsed intent.ParsedIntent) (ResolvedEntities, error) {
	out := ResolvedEntities{Intent: parsed.Intent, EntityID: defaultLockEntity}
	if door := parsed.Slot("door"); door.Present {
		id, ok := r.lexicon.Lock(door.Value)
		if !ok {
			return ResolvedEntities{}, fmt.Errorf("%w: door %q", ErrUnknownEntity, door.Value)
		}
		out.EntityID = id
	}
	return out, nil
}

// parseNumeric converts a captured digit string to a float. Slot patterns
// only capture digits, so a failure here means the rule table and the
// resolver disagree about a slot's shape.
func parseNumeric(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not numeric", ErrOutOfRange, name, value)
	}
	return v, nil
}

// entityDomain extracts the domain prefix from an entity ID.
func entityDomain(id string) Domain {
	if i := strings.IndexByte(id, '.'); i > 0 {
		return Domain(id[:i])
	}
	return Domain(id)
}
