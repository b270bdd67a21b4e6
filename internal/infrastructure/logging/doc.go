// Package logging wraps log/slog for Voice Core.
//
// All packages log through this wrapper so every record carries the
// service name and build version, and so level and format are driven by
// one config section rather than per-package choices:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// A typical record from the pipeline:
//
//	log.Info("command processed", "intent", "turn_on_light", "outcome", "success")
//
// # Security
//
// Never log secrets, the controller token, or raw command text that
// failed validation. The validation deny-list exists precisely because
// inbound text may be hostile; keep it out of the logs.
package logging
