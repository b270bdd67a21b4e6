// Package controller dispatches resolved commands to the external
// home-automation controller over its REST service API.
//
// The dispatcher makes exactly one outbound attempt per call and folds
// every failure, transport or HTTP, into a closed set of error kinds.
// Retry policy deliberately lives with the caller: a hidden retry here
// could actuate a device twice.
//
// # Security Considerations
//
// The bearer token is injected from configuration (sourced from the
// environment in production) and the controller's raw error bodies are
// drained but never included in results or logs.
package controller
