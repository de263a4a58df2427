package handlers

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/pkg/errors"

	"github.com/crucial707/profiles-api/internal/auth"
	"github.com/crucial707/profiles-api/internal/metrics"
	"github.com/crucial707/profiles-api/internal/middleware"
	"github.com/crucial707/profiles-api/internal/repo"
)

const msgBadCredentials = "unable to log in with provided credentials"

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Profiles *repo.ProfileRepo
	Issuer   *auth.Issuer
	Denylist auth.Denylist
}

type loginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ==========================
// Login (username is the profile email; JSON or form body)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	input, err := decodeLogin(r)
	if err != nil {
		JSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if input.Username == "" {
		input.Username = input.Email
	}

	fields := map[string]string{}
	if input.Username == "" {
		fields["username"] = "this field is required"
	}
	if input.Password == "" {
		fields["password"] = "this field is required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	profile, err := h.Profiles.GetByEmail(r.Context(), input.Username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		metrics.IncLogin(metrics.LoginError)
		internalError(w, r, err)
		return
	}
	if profile == nil || !profile.IsActive || !auth.CheckPassword(profile.PasswordHash, input.Password) {
		metrics.IncLogin(metrics.LoginInvalid)
		JSONError(w, msgBadCredentials, http.StatusBadRequest)
		return
	}

	token, _, err := h.Issuer.Issue(profile)
	if err != nil {
		metrics.IncLogin(metrics.LoginError)
		internalError(w, r, err)
		return
	}

	metrics.IncLogin(metrics.LoginSuccess)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ==========================
// Logout (revokes the presented token)
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.CurrentClaims(r.Context())
	if !ok {
		middleware.Unauthorized(w, msgNotAuthenticated)
		return
	}
	if err := h.Denylist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeLogin(r *http.Request) (loginInput, error) {
	var input loginInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		input.Username = r.PostFormValue("username")
		input.Email = r.PostFormValue("email")
		input.Password = r.PostFormValue("password")
		return input, nil
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	return input, err
}
