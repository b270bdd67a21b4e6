package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errorResponse is the uniform error body: a single "error" field of the
// form "<category>: <reason>".
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes the uniform error body.
func writeError(w http.ResponseWriter, status int, category, reason string) {
	writeJSON(w, status, errorResponse{
		Error: fmt.Sprintf("%s: %s", category, reason),
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, category, reason string) {
	writeError(w, http.StatusBadRequest, category, reason)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, reason string) {
	writeError(w, http.StatusInternalServerError, "internal_error", reason)
}
