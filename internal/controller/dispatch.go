package controller

import (
	"fmt"

	"github.com/aldersync/voice-core/internal/intent"
)

// serviceCall is the controller service endpoint an intent maps to.
type serviceCall struct {
	Domain string
	Action string
}

// serviceCalls maps each actionable intent to its controller service.
// set_brightness rides the light turn_on service with a brightness
// parameter, which is how the controller models it.
var serviceCalls = map[intent.Kind]serviceCall{
	intent.KindTurnOnLight:    {"light", "turn_on"},
	intent.KindTurnOffLight:   {"light", "turn_off"},
	intent.KindSetBrightness:  {"light", "turn_on"},
	intent.KindSetTemperature: {"climate", "set_temperature"},
	intent.KindPlayMedia:      {"media_player", "play_media"},
	intent.KindStopMedia:      {"media_player", "media_stop"},
	intent.KindActivateScene:  {"scene", "turn_on"},
	intent.KindLockDoor:       {"lock", "lock"},
	intent.KindUnlockDoor:     {"lock", "unlock"},
}

// callForIntent returns the service endpoint for an intent.
func callForIntent(kind intent.Kind) (serviceCall, error) {
	call, ok := serviceCalls[kind]
	if !ok {
		return serviceCall{}, fmt.Errorf("intent %s has no controller service mapping", kind)
	}
	return call, nil
}
