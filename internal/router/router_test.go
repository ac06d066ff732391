// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jowam/internal/articles"
	"jowam/internal/content"
	"jowam/internal/handlers"
	"jowam/internal/mailer"
	"jowam/internal/middleware"
	"jowam/internal/models"
	"jowam/internal/render"
	"jowam/internal/session"
)

type emptyRepo struct{}

func (emptyRepo) Create(context.Context, *models.Article) (*models.Article, error) { return nil, nil }
func (emptyRepo) Update(context.Context, *models.Article) (*models.Article, error) { return nil, nil }
func (emptyRepo) Delete(context.Context, uuid.UUID) (bool, error)                  { return false, nil }
func (emptyRepo) FindByID(context.Context, uuid.UUID) (*models.Article, error)     { return nil, nil }
func (emptyRepo) FindBySlug(context.Context, string) (*models.Article, error)      { return nil, nil }
func (emptyRepo) List(context.Context, models.ArticleFilter) ([]models.Article, error) {
	return nil, nil
}

type emptyCatalog struct{}

func (emptyCatalog) ListAvailable(context.Context, models.CatalogFilter) ([]models.CatalogItem, error) {
	return nil, nil
}
func (emptyCatalog) Facets(context.Context) (*models.CatalogFacets, error) {
	return &models.CatalogFacets{}, nil
}

// fixedSession returns the same session for every request.
type fixedSession struct{ data *session.Data }

func (f fixedSession) Get(context.Context, *http.Request) (*session.Data, error) { return f.data, nil }

type nopMailer struct{}

func (nopMailer) Send(context.Context, mailer.Template, map[string]string) error { return nil }

func newTestRouter(t *testing.T, sess *session.Data) http.Handler {
	t.Helper()
	renderer, err := render.New(render.Site{Name: "Jowam Coffee", URL: "http://localhost"})
	require.NoError(t, err)

	manager := articles.NewManager(emptyRepo{}, middleware.SessionGate{})
	formLimiter := middleware.NewRateLimiter(2, time.Minute, time.Minute)
	loginLimiter := middleware.NewRateLimiter(5, time.Minute, time.Minute)
	t.Cleanup(formLimiter.Stop)
	t.Cleanup(loginLimiter.Stop)

	library, err := content.Load()
	require.NoError(t, err)

	return New(Deps{
		Sessions: fixedSession{data: sess},
		Admin:    handlers.NewAdmin(manager, nil, nil, nil),
		Auth:     handlers.NewAuth(nil, nil, "Jowam Coffee"),
		Public: handlers.NewPublic(manager, emptyCatalog{}, library, renderer, nil, map[string]render.StaticView{
			"about": {Title: "About"},
		}),
		Forms:        handlers.NewForms(nopMailer{}, handlers.Contact{}),
		Static:       fstest.MapFS{"site.css": {Data: []byte("body{}")}},
		FormLimiter:  formLimiter,
		LoginLimiter: loginLimiter,
	})
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/", http.StatusOK},
		{"/insights", http.StatusOK},
		{"/insights/missing", http.StatusNotFound},
		{"/catalog", http.StatusOK},
		{"/faqs", http.StatusOK},
		{"/faqs?q=mombasa&category=shipping", http.StatusOK},
		{"/origins", http.StatusOK},
		{"/origins/nyeri", http.StatusOK},
		{"/origins/muranga", http.StatusOK},
		{"/origins/atlantis", http.StatusNotFound},
		{"/about", http.StatusOK},
		{"/nowhere", http.StatusNotFound},
		{"/api/articles", http.StatusOK},
		{"/api/catalog", http.StatusOK},
		{"/api/faqs?category=quality", http.StatusOK},
		{"/api/origins", http.StatusOK},
		{"/static/site.css", http.StatusOK},
		{"/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestAdminGuards(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Data
		path string
		want int
	}{
		{"no session", nil, "/admin/api/dashboard", http.StatusUnauthorized},
		{"2fa pending", &session.Data{Role: models.RoleAdmin}, "/admin/api/dashboard", http.StatusForbidden},
		{"editor on users", &session.Data{Role: models.RoleEditor, TwoFADone: true}, "/admin/api/users", http.StatusForbidden},
		{"me with 2fa pending", &session.Data{Role: models.RoleViewer}, "/admin/api/me", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.sess)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestAdminMutationsNeedCSRF(t *testing.T) {
	h := newTestRouter(t, &session.Data{Role: models.RoleAdmin, TwoFADone: true})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/api/articles", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "CSRF")

	req := httptest.NewRequest(http.MethodPost, "/admin/api/articles", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CSRFHeaderName, "tok")
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "tok"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
}

func TestFormsAreRateLimited(t *testing.T) {
	h := newTestRouter(t, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(`{"email":"reader@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
