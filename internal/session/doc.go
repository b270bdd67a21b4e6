// Package session enforces per-session command quotas and expiry.
//
// A session is the only shared mutable state in the command pipeline, so
// its read-modify-write is the one place that must be atomic: the
// governor performs each admit inside a single transaction ending in a
// conditional update, which makes quota enforcement correct under
// concurrent commands for the same session.
//
// Sessions expire after an idle window or a maximum total duration,
// whichever comes first. Expired records are deleted, both lazily on the
// next admit and in bulk by the periodic purge.
package session
