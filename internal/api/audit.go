package api

import (
	"net/http"
	"strconv"

	"github.com/aldersync/voice-core/internal/audit"
)

// maxAuditLimit caps the number of audit rows a single request can pull.
const maxAuditLimit = 500

// handleListAudit returns audit events, newest first.
//
// Query parameters: session_id, intent, outcome, limit (max 500).
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{
		SessionID: r.URL.Query().Get("session_id"),
		Intent:    r.URL.Query().Get("intent"),
		Outcome:   r.URL.Query().Get("outcome"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeBadRequest(w, "invalid_input", "limit must be a positive integer")
			return
		}
		if limit > maxAuditLimit {
			limit = maxAuditLimit
		}
		filter.Limit = limit
	}

	events, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("audit list failed", "error", err)
		writeInternalError(w, "failed to list audit events")
		return
	}

	if events == nil {
		events = []audit.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
