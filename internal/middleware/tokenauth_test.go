package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/profiles-api/internal/auth"
	"github.com/crucial707/profiles-api/internal/models"
	"github.com/crucial707/profiles-api/internal/repo"
)

type stubProfiles map[int]*models.Profile

func (s stubProfiles) GetByID(_ context.Context, id int) (*models.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, repo.ErrNotFound
}

type failingProfiles struct{}

func (failingProfiles) GetByID(context.Context, int) (*models.Profile, error) {
	return nil, errors.New("db down")
}

// whoami echoes the authenticated profile id, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if p, ok := CurrentProfile(r.Context()); ok {
		w.Write([]byte(p.Email))
		return
	}
	w.Write([]byte("anonymous"))
})

func newAuthFixture(t *testing.T) (*auth.Issuer, *auth.MemoryDenylist, stubProfiles) {
	t.Helper()
	return auth.NewIssuer([]byte("test-secret"), time.Hour), auth.NewMemoryDenylist(), stubProfiles{
		1: {ID: 1, Email: "alice@example.com", IsActive: true},
		2: {ID: 2, Email: "inactive@example.com", IsActive: false},
	}
}

func TestTokenAuth(t *testing.T) {
	issuer, denylist, profiles := newAuthFixture(t)

	alice, _, err := issuer.Issue(profiles[1])
	require.NoError(t, err)
	inactive, _, err := issuer.Issue(profiles[2])
	require.NoError(t, err)
	ghost, _, err := issuer.Issue(&models.Profile{ID: 99})
	require.NoError(t, err)
	revoked, revokedClaims, err := issuer.Issue(profiles[1])
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), revokedClaims.ID, time.Now().Add(time.Hour)))

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"other scheme", "Basic dXNlcjpwYXNz", http.StatusOK, "anonymous"},
		{"token scheme", "Token " + alice, http.StatusOK, "alice@example.com"},
		{"bearer scheme", "Bearer " + alice, http.StatusOK, "alice@example.com"},
		{"lowercase scheme", "token " + alice, http.StatusOK, "alice@example.com"},
		{"missing credentials", "Token", http.StatusUnauthorized, ""},
		{"spaces in token", "Token a b", http.StatusUnauthorized, ""},
		{"garbage token", "Token nope", http.StatusUnauthorized, ""},
		{"revoked token", "Token " + revoked, http.StatusUnauthorized, ""},
		{"inactive profile", "Token " + inactive, http.StatusUnauthorized, ""},
		{"deleted profile", "Token " + ghost, http.StatusUnauthorized, ""},
	}

	h := TokenAuth(issuer, denylist, profiles)(whoami)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, AuthScheme, rr.Header().Get("WWW-Authenticate"))
				return
			}
			assert.Equal(t, tc.wantBody, rr.Body.String())
		})
	}
}

func TestTokenAuth_LookupFailure(t *testing.T) {
	issuer, denylist, profiles := newAuthFixture(t)
	tok, _, err := issuer.Issue(profiles[1])
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+tok)
	rr := httptest.NewRecorder()
	TokenAuth(issuer, denylist, failingProfiles{})(whoami).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(whoami)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithProfile(req.Context(), &models.Profile{ID: 1, Email: "a@example.com"}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a@example.com", rr.Body.String())
}

func TestRequireStaff(t *testing.T) {
	h := RequireStaff(whoami)

	for _, tc := range []struct {
		name    string
		profile *models.Profile
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"regular", &models.Profile{ID: 1}, http.StatusForbidden},
		{"staff", &models.Profile{ID: 2, IsStaff: true}, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.profile != nil {
				req = req.WithContext(WithProfile(req.Context(), tc.profile))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}
