package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/crucial707/profiles-api/internal/auth"
	"github.com/crucial707/profiles-api/internal/logger"
	"github.com/crucial707/profiles-api/internal/models"
	"github.com/crucial707/profiles-api/internal/permissions"
	"github.com/crucial707/profiles-api/internal/repo"
)

const msgEmailTaken = "user profile with this email already exists"

// ==========================
// ProfileHandler
// ==========================
type ProfileHandler struct {
	Repo      *repo.ProfileRepo
	AuditRepo *repo.AuditRepo
}

// profileFields holds the validated, non-secret profile attributes.
type profileFields struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,max=255"`
}

type profileInput struct {
	profileFields
	Password string `json:"password"`
}

// profilePatch carries only the attributes present in a PATCH body.
type profilePatch struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// ==========================
// Create Profile (registration, no auth)
// ==========================
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var input profileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := validateProfile(input.profileFields, &input.Password, true); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		internalError(w, r, err)
		return
	}

	profile, err := h.Repo.Create(r.Context(), input.Email, input.Name, hash)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			JSONValidationError(w, "validation failed", map[string]string{"email": msgEmailTaken}, http.StatusBadRequest)
			return
		}
		internalError(w, r, err)
		return
	}

	h.audit(r.Context(), profile.ID, models.ActionCreate, profile.ID)
	writeJSON(w, http.StatusCreated, profile)
}

// ==========================
// List Profiles (?search=, limit, offset)
// ==========================
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	profiles, err := h.Repo.List(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		internalError(w, r, err)
		return
	}
	setNextLink(w, r, limit, offset, len(profiles))
	writeJSON(w, http.StatusOK, profiles)
}

// ==========================
// Get Profile
// ==========================
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ==========================
// Update Profile (PUT replaces, PATCH merges)
// ==========================
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	if !permissions.HasObjectPermission(r.Method, requester(r), profile) {
		denyObject(w, r)
		return
	}

	var (
		fields   profileFields
		password *string
	)
	if r.Method == http.MethodPatch {
		var patch profilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if err := copier.Copy(&fields, profile); err != nil {
			internalError(w, r, err)
			return
		}
		applyPatch(&fields, patch)
		password = patch.Password
	} else {
		var input profileInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		fields = input.profileFields
		password = &input.Password
	}

	if errs := validateProfile(fields, password, r.Method != http.MethodPatch); len(errs) > 0 {
		JSONValidationError(w, "validation failed", errs, http.StatusBadRequest)
		return
	}

	profile.Email = fields.Email
	profile.Name = fields.Name
	if password != nil {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			internalError(w, r, err)
			return
		}
		profile.PasswordHash = hash
	}

	updated, err := h.Repo.Update(r.Context(), profile)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			JSONValidationError(w, "validation failed", map[string]string{"email": msgEmailTaken}, http.StatusBadRequest)
		case errors.Is(err, repo.ErrNotFound):
			JSONError(w, "profile not found", http.StatusNotFound)
		default:
			internalError(w, r, err)
		}
		return
	}

	h.audit(r.Context(), requester(r).ID, models.ActionUpdate, updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

// ==========================
// Delete Profile
// ==========================
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	if !permissions.HasObjectPermission(r.Method, requester(r), profile) {
		denyObject(w, r)
		return
	}

	if err := h.Repo.Delete(r.Context(), profile.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "profile not found", http.StatusNotFound)
			return
		}
		internalError(w, r, err)
		return
	}

	h.audit(r.Context(), profile.ID, models.ActionDelete, profile.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) loadProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid profile id", http.StatusBadRequest)
		return nil, false
	}
	profile, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "profile not found", http.StatusNotFound)
			return nil, false
		}
		internalError(w, r, err)
		return nil, false
	}
	return profile, true
}

func (h *ProfileHandler) audit(ctx context.Context, actorID int, action string, profileID int) {
	recordAudit(ctx, h.AuditRepo, actorID, action, models.ResourceProfile, profileID)
}

func applyPatch(fields *profileFields, patch profilePatch) {
	if patch.Email != nil {
		fields.Email = *patch.Email
	}
	if patch.Name != nil {
		fields.Name = *patch.Name
	}
}

// validateProfile returns field errors. A nil password means "unchanged" and is only
// acceptable when passwordRequired is false; a present password must be non-empty.
func validateProfile(fields profileFields, password *string, passwordRequired bool) map[string]string {
	errs := map[string]string{}
	if err := validate.Struct(fields); err != nil {
		errs = fieldErrors(err)
	}
	switch {
	case password == nil && passwordRequired:
		errs["password"] = "this field is required"
	case password != nil && *password == "":
		errs["password"] = "this field may not be blank"
	}
	return errs
}

// recordAudit writes an audit entry; failures are logged and never fail the request.
func recordAudit(ctx context.Context, a *repo.AuditRepo, actorID int, action, resourceType string, resourceID int) {
	if a == nil {
		return
	}
	if err := a.Log(ctx, actorID, action, resourceType, resourceID, ""); err != nil {
		logger.Log.WithError(err).
			WithField("action", action).
			WithField("resource_type", resourceType).
			Warn("audit log write failed")
	}
}
