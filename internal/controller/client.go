package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aldersync/voice-core/internal/entity"
	"github.com/aldersync/voice-core/internal/infrastructure/config"
)

// maxDrainBytes bounds how much of a response body is read before the
// connection is released for reuse.
const maxDrainBytes = 4096

// Client issues actuation requests to the home-automation controller's
// REST surface. Every request carries the bearer token and is bounded by
// the configured timeout; failures are folded into the closed ErrorKind
// set, never surfaced raw.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a controller client from configuration.
func NewClient(cfg config.ControllerConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Dispatch issues exactly one actuation attempt for the resolved command.
//
// It never retries: a retry policy on top of a side-effecting actuation
// belongs to the caller, where duplicate-action risk can be weighed.
// Failures are returned in the result, not as an error; the only way a
// dispatch "fails" is through DispatchResult.ErrorKind.
//
// Parameters:
//   - ctx: Context for cancellation (the client timeout still applies)
//   - resolved: Resolver output naming the entity and parameters
//
// Returns:
//   - DispatchResult: Terminal outcome of the single attempt
func (c *Client) Dispatch(ctx context.Context, resolved entity.ResolvedEntities) DispatchResult {
	result := DispatchResult{
		Intent:   resolved.Intent,
		EntityID: resolved.EntityID,
	}

	call, err := callForIntent(resolved.Intent)
	if err != nil {
		result.ErrorKind = ErrorRejected
		result.Message = "command cannot be dispatched"
		return result
	}

	body := map[string]any{"entity_id": resolved.EntityID}
	for name, v := range resolved.NumericParams {
		body[name] = v
	}
	for name, v := range resolved.TextParams {
		body[name] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		result.ErrorKind = ErrorRejected
		result.Message = "command cannot be encoded"
		return result
	}

	endpoint := fmt.Sprintf("%s/api/services/%s/%s", c.baseURL, call.Domain, call.Action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		result.ErrorKind = ErrorUnreachable
		result.Message = "controller request could not be built"
		return result
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.ErrorKind, result.Message = classifyTransportError(err)
		return result
	}
	defer resp.Body.Close() //nolint:errcheck // Response body cleanup

	// Drain so the connection can be reused; the body content is never
	// propagated past this boundary.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)) //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		result.Success = true
		result.Message = fmt.Sprintf("executed %s on %s", resolved.Intent, resolved.EntityID)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		result.ErrorKind = ErrorAuthFailure
		result.Message = "controller authentication failed"
	default:
		result.ErrorKind = ErrorRejected
		result.Message = fmt.Sprintf("controller rejected the request (status %d)", resp.StatusCode)
	}

	return result
}

// classifyTransportError folds a failed HTTP round trip into the closed
// failure set.
func classifyTransportError(err error) (ErrorKind, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout, "controller request timed out"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrorTimeout, "controller request timed out"
	}

	return ErrorUnreachable, "controller unreachable"
}
