// Package audit persists the command audit trail.
//
// The invariant callers rely on: one event per pipeline run, no more, no
// less. The pipeline writes the event after the run settles, carrying
// the furthest stage reached and the outcome, so the trail answers both
// "what was asked" and "where did it stop".
package audit
