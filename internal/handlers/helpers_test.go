package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/profiles-api/internal/middleware"
	"github.com/crucial707/profiles-api/internal/models"
)

var (
	profileCols = []string{"id", "email", "name", "password_hash", "is_active", "is_staff", "created_at"}
	feedCols    = []string{"id", "user_profile_id", "status_text", "created_on"}
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

// as marks r as sent by p.
func as(r *http.Request, p *models.Profile) *http.Request {
	return r.WithContext(middleware.WithProfile(r.Context(), p))
}
