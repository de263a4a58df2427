package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crucial707/profiles-api/internal/logger"
	"github.com/crucial707/profiles-api/internal/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

const (
	msgNotAuthenticated = "authentication credentials were not provided"
	msgForbidden        = "you do not have permission to perform this action"
)

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

// internalError logs err and answers 500 without leaking it.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.WithError(err).
		WithField("path", r.URL.Path).
		WithField("method", r.Method).
		Error("request failed")
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

// denyObject answers a failed object permission check: 401 for anonymous requests, 403 otherwise.
func denyObject(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentProfile(r.Context()); !ok {
		middleware.Unauthorized(w, msgNotAuthenticated)
		return
	}
	JSONError(w, msgForbidden, http.StatusForbidden)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
