// Package validation bounds and sanitises raw command text before any
// intent matching occurs.
//
// Validation is deliberately strict and structural: commands are natural
// language, so anything resembling code, SQL, shell syntax, or markup is
// rejected outright rather than sanitised. Accepted text is returned in
// two forms, the caller's original casing for audit/echo and a trimmed
// lower-cased copy for rule matching.
//
// # Security Considerations
//
// Rejected text is never included in errors returned to API callers; only
// the name of the matched deny-list pattern is carried in the error for
// server-side logging.
package validation
