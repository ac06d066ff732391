// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Jowam Coffee site.
// Handlers are grouped by concern (admin, auth, public, forms) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jowam/internal/articles"
	"jowam/internal/cache"
	"jowam/internal/middleware"
	"jowam/internal/models"
	"jowam/internal/session"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// UserStore is the user persistence the auth and admin handlers need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, email, password, displayName string, role models.Role) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
	ResetTOTP(ctx context.Context, userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// SessionStore creates, updates and destroys admin sessions.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Catalog lists the coffee lots shown on the public site.
type Catalog interface {
	ListAvailable(ctx context.Context, f models.CatalogFilter) ([]models.CatalogItem, error)
	Facets(ctx context.Context) (*models.CatalogFacets, error)
}

// PageCache holds rendered public pages. *cache.PageCache implements it,
// and a nil *cache.PageCache is a working no-op.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Generation(ctx context.Context) int64
	SetAt(ctx context.Context, key string, gen int64, html []byte)
	InvalidateArticle(ctx context.Context, slugs ...string)
}

// orNoCache swaps a nil interface for the disabled cache.
func orNoCache(pc PageCache) PageCache {
	if pc == nil {
		return (*cache.PageCache)(nil)
	}
	return pc
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode json response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorBody{Error: msg, Field: field})
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "")
		return false
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: unexpected trailing data", "")
		return false
	}
	return true
}

// writeArticleError maps the article error taxonomy onto HTTP statuses.
func writeArticleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *articles.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Message, verr.Field)
	case errors.Is(err, articles.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, "slug already in use", "slug")
	case errors.Is(err, articles.ErrNotFound):
		writeError(w, http.StatusNotFound, "article not found", "")
	case errors.Is(err, articles.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not authorized", "")
	case errors.Is(err, articles.ErrStoreUnavailable):
		slog.Error("content store unavailable", "error", err, "path", r.URL.Path,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "content store unavailable", "")
	default:
		slog.Error("unexpected article error", "error", err, "path", r.URL.Path,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

// internalError logs err and answers 500.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path,
		"request_id", middleware.RequestIDFromCtx(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal server error", "")
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}
