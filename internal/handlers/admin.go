// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"jowam/internal/articles"
	"jowam/internal/metrics"
	"jowam/internal/models"
	"jowam/internal/slug"
	"jowam/internal/store"
)

// Admin groups the admin API handlers and their dependencies.
type Admin struct {
	articles  *articles.Manager
	users     UserStore
	covers    CoverStorage // nil when object storage is not configured
	pageCache PageCache
}

// NewAdmin creates the admin handler group. covers must be a nil
// interface, not a typed nil, when storage is disabled.
func NewAdmin(manager *articles.Manager, users UserStore, covers CoverStorage, pageCache PageCache) *Admin {
	return &Admin{
		articles:  manager,
		users:     users,
		covers:    covers,
		pageCache: orNoCache(pageCache),
	}
}

// Dashboard returns article counters and the most recent articles.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.articles.Stats(r.Context())
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Slug previews the slug derived from ?title=.
func (a *Admin) Slug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"slug": slug.Generate(r.URL.Query().Get("title"))})
}

// adminListQuery is the admin article listing filter.
type adminListQuery struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	Tag      string `json:"tag"`
	Query    string `json:"q"`
}

// ListArticles returns all articles, drafts included, newest first.
func (a *Admin) ListArticles(w http.ResponseWriter, r *http.Request) {
	var q adminListQuery
	if err := decodeQuery(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", "")
		return
	}
	status := models.ArticleStatus(q.Status)
	if status != "" && !status.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "must be draft or published", "status")
		return
	}

	list, err := a.articles.ListAll(r.Context(), models.ArticleFilter{
		Status:   status,
		Category: models.Category(q.Category),
		Tag:      strings.TrimSpace(q.Tag),
		Query:    strings.TrimSpace(q.Query),
	})
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": list})
}

// CreateArticle stores a new article.
func (a *Admin) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in articles.Input
	if !decodeJSON(w, r, &in) {
		return
	}

	created, err := a.articles.Create(r.Context(), in)
	metrics.ObserveMutation("create", err)
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	if created.IsPublished() {
		a.pageCache.InvalidateArticle(r.Context(), created.Slug)
	}
	slog.Info("article created", "id", created.ID, "slug", created.Slug, "status", created.Status)
	writeJSON(w, http.StatusCreated, created)
}

// GetArticle returns one article by id.
func (a *Admin) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeArticleError(w, r, articles.ErrNotFound)
		return
	}
	art, err := a.articles.Get(r.Context(), id)
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, art)
}

// UpdateArticle applies a partial update.
func (a *Admin) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeArticleError(w, r, articles.ErrNotFound)
		return
	}
	var p articles.Patch
	if !decodeJSON(w, r, &p) {
		return
	}

	updated, before, err := a.articles.Revise(r.Context(), id, p)
	metrics.ObserveMutation("update", err)
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	// The previous slug's page must go too when the slug changed.
	a.pageCache.InvalidateArticle(r.Context(), before.Slug, updated.Slug)
	writeJSON(w, http.StatusOK, updated)
}

// ToggleStatus flips an article between draft and published.
func (a *Admin) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeArticleError(w, r, articles.ErrNotFound)
		return
	}
	updated, err := a.articles.ToggleStatus(r.Context(), id)
	metrics.ObserveMutation("toggle", err)
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	a.pageCache.InvalidateArticle(r.Context(), updated.Slug)
	slog.Info("article status toggled", "id", updated.ID, "status", updated.Status)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteArticle removes an article and, when it lives in our bucket, its
// cover image.
func (a *Admin) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeArticleError(w, r, articles.ErrNotFound)
		return
	}
	removed, err := a.articles.Delete(r.Context(), id)
	metrics.ObserveMutation("delete", err)
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	a.pageCache.InvalidateArticle(r.Context(), removed.Slug)

	if a.covers != nil && removed.CoverImage != nil {
		if err := a.covers.DeleteByURL(r.Context(), *removed.CoverImage); err != nil {
			slog.Warn("cover cleanup failed", "error", err, "article", removed.ID)
		}
	}
	slog.Info("article deleted", "id", removed.ID, "slug", removed.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// --- Users (admin role only) ---

// ListUsers returns every staff account.
func (a *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		internalError(w, r, "list users failed", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// newUserRequest is the body of POST /users. bcrypt ignores input past
// 72 bytes, hence the password cap.
type newUserRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=12,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=120"`
	Role        string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// CreateUser adds a staff account. The new user enrolls in 2FA on first
// login.
func (a *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req newUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if !checkStruct(w, &req) {
		return
	}

	user, err := a.users.Create(r.Context(), req.Email, req.Password, req.DisplayName, models.Role(req.Role))
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "email already registered", "email")
		return
	}
	if err != nil {
		internalError(w, r, "create user failed", err)
		return
	}
	slog.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role)
	writeJSON(w, http.StatusCreated, user)
}

// ResetTwoFA clears a user's TOTP enrollment so they set it up again on
// next login.
func (a *Admin) ResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found", "")
		return
	}
	user, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		internalError(w, r, "find user failed", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found", "")
		return
	}
	if err := a.users.ResetTOTP(r.Context(), id); err != nil {
		internalError(w, r, "reset totp failed", err)
		return
	}
	slog.Info("user 2fa reset", "id", id, "email", user.Email)
	w.WriteHeader(http.StatusNoContent)
}
