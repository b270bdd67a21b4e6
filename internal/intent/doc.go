// Package intent classifies validated command text into canonical intents
// using an ordered rule table.
//
// The table is declarative data (see configs/rules.yaml): each rule pairs
// a trigger pattern with an intent kind, a unique priority, and a set of
// named single-capture slot patterns. Rules are evaluated in ascending
// priority order and the first trigger match wins, which makes rule
// precedence explicit and testable rather than an accident of source
// order.
//
// The table is compiled once at startup and never changes, so the
// classifier is safe for concurrent use and fully deterministic: the same
// text always yields the same ParsedIntent.
package intent
