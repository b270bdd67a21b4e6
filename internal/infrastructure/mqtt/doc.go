// Package mqtt provides Voice Core's publish-only MQTT event stream.
//
// Two kinds of messages leave this package: a retained status message on
// voicecore/system/status (with a Last Will and Testament so an
// unexpected disconnect is visible to consumers), and per-command
// outcome events on voicecore/command/<outcome>.
//
// The event stream is strictly best-effort from the pipeline's point of
// view: a broker outage never fails a command. Voice Core holds no
// subscriptions, so reconnects carry no re-subscription state.
package mqtt
