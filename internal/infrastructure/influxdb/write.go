package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCommandMetric records one pipeline run.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Tags stay low-cardinality (intent, outcome, stage are all closed
// sets); the latency goes in as a field.
//
// Parameters:
//   - intent: Classified intent kind (e.g. "turn_on_light")
//   - outcome: Terminal outcome category (e.g. "success", "quota_exceeded")
//   - stage: Furthest pipeline stage reached
//   - latency: Total pipeline duration for the command
func (c *Client) WriteCommandMetric(intent, outcome, stage string, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"intent":  intent,
			"outcome": outcome,
			"stage":   stage,
		},
		map[string]interface{}{
			"latency_ms": float64(latency.Milliseconds()),
			"count":      1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionMetric records session lifecycle counts, written by the
// periodic purge (sessions removed) and on admission refusals.
//
// Parameters:
//   - event: Lifecycle event ("purged", "quota_refused", "expired")
//   - count: Number of sessions the event covers
func (c *Client) WriteSessionMetric(event string, count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sessions",
		map[string]string{
			"event": event,
		},
		map[string]interface{}{
			"count": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
