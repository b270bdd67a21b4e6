package mqtt

import "fmt"

// topicPrefix is the root of the voicecore topic namespace.
const topicPrefix = "voicecore"

// Topics builds the topic strings Voice Core publishes to. Using a type
// rather than string constants keeps every topic in one place and makes
// call sites self-describing.
type Topics struct{}

// SystemStatus is the online/offline status topic (retained, also used
// as the LWT target).
func (Topics) SystemStatus() string {
	return topicPrefix + "/system/status"
}

// CommandResult is the per-outcome event topic, segmented by outcome so
// consumers can subscribe to just failures (voicecore/command/+).
func (Topics) CommandResult(outcome string) string {
	return fmt.Sprintf("%s/command/%s", topicPrefix, outcome)
}
