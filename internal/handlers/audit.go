package handlers

import (
	"net/http"

	"github.com/crucial707/profiles-api/internal/repo"
)

// AuditHandler serves audit log endpoints. Staff only.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns recent audit log entries. Query: limit (default 50), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		internalError(w, r, err)
		return
	}
	setNextLink(w, r, limit, offset, len(entries))
	writeJSON(w, http.StatusOK, entries)
}
