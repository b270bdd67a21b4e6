package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/aldersync/voice-core/internal/controller"
	"github.com/aldersync/voice-core/internal/intent"
	"github.com/aldersync/voice-core/internal/pipeline"
)

// commandRequest is the inbound command payload.
type commandRequest struct {
	Command   string `json:"command"`
	SessionID string `json:"session_id"`
}

// commandResponse is the 200 response for processed commands, covering
// both actuated commands and unknown ones.
type commandResponse struct {
	Command    string         `json:"command"`
	SessionID  string         `json:"session_id"`
	Intent     intent.Kind    `json:"intent"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Result     commandResult  `json:"result"`
}

type commandResult struct {
	Success    bool           `json:"success"`
	Intent     intent.Kind    `json:"intent"`
	EntityID   string         `json:"entity_id,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Message    string         `json:"message"`
}

// unknownCommandSuggestion is returned when no rule matches, so callers
// can offer a clarification UX.
const unknownCommandSuggestion = `command not recognised, try "turn on the lights", "set temperature to 72", or "play music"`

// handleCommand runs one command through the pipeline and maps the
// outcome onto the HTTP surface.
//
// Status mapping: validation and resolution failures are 400, except
// the domain allow-list which is 403; session refusals are 429;
// controller timeouts are 504 and other controller failures 502.
// An unknown command is a 200 with intent "unknown_command".
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, pipeline.OutcomeInvalidInput, "request body must be JSON with a command field")
		return
	}

	// Assign a session on first contact.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	result := s.pipeline.Process(r.Context(), req.Command, sessionID)

	if result.Err != nil {
		status, reason := failureStatus(result)
		writeError(w, status, result.Outcome, reason)
		return
	}

	resp := commandResponse{
		Command:    result.Command,
		SessionID:  sessionID,
		Intent:     result.Intent,
		Parameters: result.Parameters,
		Result: commandResult{
			Intent:     result.Intent,
			EntityID:   result.EntityID,
			Parameters: result.Parameters,
		},
	}

	switch {
	case result.Intent == intent.KindUnknown:
		resp.Result.Message = unknownCommandSuggestion
	case result.Dispatch != nil:
		resp.Result.Success = result.Dispatch.Success
		resp.Result.Message = result.Dispatch.Message
		if !result.Dispatch.Success {
			status, reason := dispatchStatus(result.Dispatch.ErrorKind)
			writeError(w, status, result.Outcome, reason)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// failureStatus maps a short-circuited pipeline run to an HTTP status
// and a caller-safe reason.
func failureStatus(result pipeline.Result) (int, string) {
	switch result.Outcome {
	case pipeline.OutcomeInvalidInput:
		// Generic by design: the offending text is never echoed back.
		return http.StatusBadRequest, "invalid input detected, check your command and try again"
	case pipeline.OutcomeDomainNotPermitted:
		return http.StatusForbidden, "that device class cannot be controlled"
	case pipeline.OutcomeUnknownEntity, pipeline.OutcomeOutOfRange:
		return http.StatusBadRequest, result.Err.Error()
	case pipeline.OutcomeSessionExpired:
		return http.StatusTooManyRequests, "session expired, start a new session"
	case pipeline.OutcomeQuotaExceeded:
		return http.StatusTooManyRequests, "command quota exceeded, wait for the session to expire or start a new one"
	default:
		return http.StatusInternalServerError, "command processing failed"
	}
}

// dispatchStatus maps controller failure kinds to HTTP statuses. The
// pipeline never retries; callers may retry the whole command.
func dispatchStatus(kind controller.ErrorKind) (int, string) {
	switch kind {
	case controller.ErrorTimeout:
		return http.StatusGatewayTimeout, "controller did not respond in time"
	case controller.ErrorUnreachable:
		return http.StatusBadGateway, "controller unreachable"
	case controller.ErrorAuthFailure:
		return http.StatusBadGateway, "controller refused our credentials"
	default:
		return http.StatusBadGateway, "controller rejected the command"
	}
}
