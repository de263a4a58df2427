package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/crucial707/profiles-api/internal/metrics"
	"github.com/crucial707/profiles-api/internal/middleware"
	"github.com/crucial707/profiles-api/internal/models"
	"github.com/crucial707/profiles-api/internal/permissions"
	"github.com/crucial707/profiles-api/internal/repo"
)

// FeedHandler serves profile status updates. Every route requires authentication.
type FeedHandler struct {
	Repo      *repo.FeedRepo
	AuditRepo *repo.AuditRepo
}

type feedInput struct {
	StatusText string `json:"status_text" validate:"required,max=255"`
}

// ListFeed returns feed items. Query: user_profile (owner filter), limit, offset.
func (h *FeedHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	owner := 0
	if v := r.URL.Query().Get("user_profile"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			JSONValidationError(w, "validation failed", map[string]string{"user_profile": "must be a profile id"}, http.StatusBadRequest)
			return
		}
		owner = id
	}
	limit, offset := pagination(r)

	items, err := h.Repo.List(r.Context(), owner, limit, offset)
	if err != nil {
		internalError(w, r, err)
		return
	}
	setNextLink(w, r, limit, offset, len(items))
	writeJSON(w, http.StatusOK, items)
}

// CreateFeedItem posts a status for the requester. Any owner in the body is ignored.
func (h *FeedHandler) CreateFeedItem(w http.ResponseWriter, r *http.Request) {
	me := requester(r)
	if me == nil {
		middleware.Unauthorized(w, msgNotAuthenticated)
		return
	}

	var input feedInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", fieldErrors(err), http.StatusBadRequest)
		return
	}

	item, err := h.Repo.Create(r.Context(), me.ID, input.StatusText)
	if err != nil {
		internalError(w, r, err)
		return
	}

	metrics.IncFeedItemsCreated()
	h.audit(r.Context(), me.ID, models.ActionCreate, item.ID)
	writeJSON(w, http.StatusCreated, item)
}

func (h *FeedHandler) GetFeedItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateFeedItem changes status_text. PUT requires it; PATCH without it is a no-op update.
func (h *FeedHandler) UpdateFeedItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	if !permissions.HasObjectPermission(r.Method, requester(r), item) {
		denyObject(w, r)
		return
	}

	var patch struct {
		StatusText *string `json:"status_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	input := feedInput{StatusText: item.StatusText}
	switch {
	case patch.StatusText != nil:
		input.StatusText = *patch.StatusText
	case r.Method == http.MethodPut:
		input.StatusText = ""
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", fieldErrors(err), http.StatusBadRequest)
		return
	}

	updated, err := h.Repo.Update(r.Context(), item.ID, input.StatusText)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "feed item not found", http.StatusNotFound)
			return
		}
		internalError(w, r, err)
		return
	}

	h.audit(r.Context(), requester(r).ID, models.ActionUpdate, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (h *FeedHandler) DeleteFeedItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	if !permissions.HasObjectPermission(r.Method, requester(r), item) {
		denyObject(w, r)
		return
	}

	if err := h.Repo.Delete(r.Context(), item.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "feed item not found", http.StatusNotFound)
			return
		}
		internalError(w, r, err)
		return
	}

	h.audit(r.Context(), requester(r).ID, models.ActionDelete, item.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandler) loadItem(w http.ResponseWriter, r *http.Request) (*models.FeedItem, bool) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid feed item id", http.StatusBadRequest)
		return nil, false
	}
	item, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "feed item not found", http.StatusNotFound)
			return nil, false
		}
		internalError(w, r, err)
		return nil, false
	}
	return item, true
}

func (h *FeedHandler) audit(ctx context.Context, actorID int, action string, itemID int) {
	recordAudit(ctx, h.AuditRepo, actorID, action, models.ResourceFeedItem, itemID)
}

// requester is the authenticated profile or nil.
func requester(r *http.Request) *models.Profile {
	p, _ := middleware.CurrentProfile(r.Context())
	return p
}
