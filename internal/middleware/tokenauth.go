package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/crucial707/profiles-api/internal/auth"
	"github.com/crucial707/profiles-api/internal/logger"
	"github.com/crucial707/profiles-api/internal/models"
	"github.com/crucial707/profiles-api/internal/repo"
)

type key string

const (
	profileKey key = "profile"
	claimsKey  key = "claims"
)

// AuthScheme is advertised in WWW-Authenticate on 401 responses.
const AuthScheme = "Token"

// ProfileLookup loads the profile a token points at.
type ProfileLookup interface {
	GetByID(ctx context.Context, id int) (*models.Profile, error)
}

// TokenAuth authenticates "Authorization: Token <t>" (or "Bearer <t>") headers.
// Requests without credentials pass through anonymously; permission checks decide later.
// Credentials that are present but unusable are rejected with 401.
func TokenAuth(issuer *auth.Issuer, denylist auth.Denylist, profiles ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) == 0 || !isTokenScheme(parts[0]) {
				next.ServeHTTP(w, r)
				return
			}
			if len(parts) == 1 {
				Unauthorized(w, "invalid token header: no credentials provided")
				return
			}
			if len(parts) > 2 {
				Unauthorized(w, "invalid token header: token must not contain spaces")
				return
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				Unauthorized(w, "invalid token")
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Log.WithError(err).Error("denylist lookup failed")
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if revoked {
				Unauthorized(w, "invalid token")
				return
			}

			profile, err := profiles.GetByID(r.Context(), claims.ProfileID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				logger.Log.WithError(err).Error("token profile lookup failed")
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if profile == nil || !profile.IsActive {
				Unauthorized(w, "user inactive or deleted")
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, profile)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isTokenScheme(s string) bool {
	return strings.EqualFold(s, "token") || strings.EqualFold(s, "bearer")
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentProfile(r.Context()); !ok {
			Unauthorized(w, "authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff allows only staff profiles. Anonymous requests get 401.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := CurrentProfile(r.Context())
		if !ok {
			Unauthorized(w, "authentication credentials were not provided")
			return
		}
		if !p.IsStaff {
			writeJSONError(w, "you do not have permission to perform this action", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentProfile returns the authenticated profile, if any.
func CurrentProfile(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*models.Profile)
	return p, ok && p != nil
}

// CurrentClaims returns the verified token claims, if any.
func CurrentClaims(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// GetUserID returns the authenticated profile id.
func GetUserID(ctx context.Context) (int, bool) {
	p, ok := CurrentProfile(ctx)
	if !ok {
		return 0, false
	}
	return p.ID, true
}

// WithProfile attaches p to ctx as the authenticated requester.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// Unauthorized writes a 401 with the token challenge header.
func Unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", AuthScheme)
	writeJSONError(w, message, http.StatusUnauthorized)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
