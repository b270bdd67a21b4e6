// Package pipeline orchestrates the command lifecycle: validate,
// classify, resolve, admit, dispatch.
//
// Each command is an independent unit of work; the pipeline itself holds
// no state, so any number of commands can run concurrently. The only
// blocking points are the session store and the single controller call,
// both bounded by timeouts.
//
// The pipeline's contract with its observers: one audit event per run,
// no exceptions. MQTT, WebSocket, and InfluxDB fan-out are best-effort
// and can never fail a command.
package pipeline
