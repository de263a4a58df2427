package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/profiles-api/internal/auth"
	"github.com/crucial707/profiles-api/internal/middleware"
	"github.com/crucial707/profiles-api/internal/models"
	"github.com/crucial707/profiles-api/internal/repo"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := &AuthHandler{
		Profiles: repo.NewProfileRepo(db),
		Issuer:   auth.NewIssuer([]byte("test-secret"), time.Hour),
		Denylist: auth.NewMemoryDenylist(),
	}
	return h, mock, func() { db.Close() }
}

func expectProfileByEmail(t *testing.T, mock sqlmock.Sqlmock, email, password string, active bool) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	mock.ExpectQuery(`FROM user_profiles WHERE email = \$1`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow(1, email, "Alice", hash, active, false, time.Now()))
}

func TestAuthHandler_Login_JSON(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()
	expectProfileByEmail(t, mock, "alice@example.com", "secret", true)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice@EXAMPLE.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	require.NotEmpty(t, out["token"])

	claims, err := h.Issuer.Parse(out["token"])
	require.NoError(t, err)
	assert.Equal(t, 1, claims.ProfileID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_Form(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()
	expectProfileByEmail(t, mock, "alice@example.com", "secret", true)

	form := url.Values{"username": {"alice@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		expect func(*testing.T, sqlmock.Sqlmock)
	}{
		{
			name: "wrong password",
			body: `{"username":"alice@example.com","password":"nope"}`,
			expect: func(t *testing.T, m sqlmock.Sqlmock) {
				expectProfileByEmail(t, m, "alice@example.com", "secret", true)
			},
		},
		{
			name: "inactive",
			body: `{"username":"alice@example.com","password":"secret"}`,
			expect: func(t *testing.T, m sqlmock.Sqlmock) {
				expectProfileByEmail(t, m, "alice@example.com", "secret", false)
			},
		},
		{
			name: "unknown email",
			body: `{"username":"ghost@example.com","password":"secret"}`,
			expect: func(t *testing.T, m sqlmock.Sqlmock) {
				m.ExpectQuery(`FROM user_profiles WHERE email = \$1`).
					WithArgs("ghost@example.com").
					WillReturnRows(sqlmock.NewRows(profileCols))
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, mock, done := newAuthHandler(t)
			defer done()
			tc.expect(t, mock)

			rr := httptest.NewRecorder()
			h.Login(rr, httptest.NewRequest("POST", "/api/login", strings.NewReader(tc.body)))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var out map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
			assert.Equal(t, msgBadCredentials, out["error"])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h, mock, done := newAuthHandler(t)
	defer done()

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest("POST", "/api/login", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	assert.Contains(t, out.Fields, "username")
	assert.Contains(t, out.Fields, "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

type oneProfile struct{}

func (oneProfile) GetByID(_ context.Context, id int) (*models.Profile, error) {
	return &models.Profile{ID: id, Email: "alice@example.com", IsActive: true}, nil
}

func TestAuthHandler_Logout_RevokesToken(t *testing.T) {
	h, _, done := newAuthHandler(t)
	defer done()

	token, claims, err := h.Issuer.Issue(alice)
	require.NoError(t, err)

	logout := middleware.TokenAuth(h.Issuer, h.Denylist, oneProfile{})(http.HandlerFunc(h.Logout))

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.Header.Set("Authorization", "Token "+token)
	rr := httptest.NewRecorder()
	logout.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	revoked, err := h.Denylist.IsRevoked(req.Context(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// The same token is now refused.
	rr = httptest.NewRecorder()
	logout.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler_Logout_Anonymous(t *testing.T) {
	h, _, done := newAuthHandler(t)
	defer done()

	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest("POST", "/api/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
