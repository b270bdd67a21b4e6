// Package influxdb records Voice Core's pipeline telemetry: one point
// per command (intent, outcome, furthest stage, latency) plus session
// lifecycle counts.
//
// Writes are batched and asynchronous. The pipeline treats telemetry as
// strictly best-effort: when InfluxDB is disabled or down, commands
// proceed untouched and writes become no-ops.
package influxdb
