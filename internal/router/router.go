// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Jowam site. It organizes routes into the public site, the public JSON
// API, the lead forms and the admin API.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jowam/internal/handlers"
	"jowam/internal/middleware"
)

// Deps holds everything the router wires together. The rate limiters are
// owned by the caller, which stops them on shutdown.
type Deps struct {
	Sessions      middleware.SessionLoader
	Admin         *handlers.Admin
	Auth          *handlers.Auth
	Public        *handlers.Public
	Forms         *handlers.Forms
	Static        fs.FS
	FormLimiter   *middleware.RateLimiter
	LoginLimiter  *middleware.RateLimiter
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders(d.SecureCookies))
	r.Use(middleware.Metrics)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(d.Static)))

	// Public site
	r.Get("/", d.Public.Home)
	r.Get("/insights", d.Public.Insights)
	r.Get("/insights/{slug}", d.Public.Article)
	r.Get("/catalog", d.Public.Catalog)
	r.Get("/faqs", d.Public.FAQs)
	r.Get("/origins", d.Public.Origins)
	r.Get("/origins/{slug}", d.Public.Origin)
	r.Get("/{page}", d.Public.StaticPage)
	r.NotFound(d.Public.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", d.Public.APIArticles)
		r.Get("/articles/{slug}", d.Public.APIArticle)
		r.Get("/catalog", d.Public.APICatalog)
		r.Get("/faqs", d.Public.APIFAQs)
		r.Get("/origins", d.Public.APIOrigins)
	})

	// Lead forms carry no session, so they are rate limited instead of
	// CSRF protected.
	r.Group(func(r chi.Router) {
		r.Use(d.FormLimiter.Middleware)
		r.Post("/contact", d.Forms.Contact)
		r.Post("/request-samples", d.Forms.RequestSamples)
		r.Post("/newsletter", d.Forms.Newsletter)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadSession(d.Sessions))

		r.With(d.LoginLimiter.Middleware).Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)

		// Password accepted, second factor pending.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", d.Auth.Me)
			r.Get("/2fa/setup", d.Auth.TwoFASetup)
			r.With(d.LoginLimiter.Middleware).Post("/2fa/verify", d.Auth.TwoFAVerify)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/dashboard", d.Admin.Dashboard)
			r.Get("/slug", d.Admin.Slug)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", d.Admin.ListArticles)
				r.Post("/", d.Admin.CreateArticle)
				r.Get("/{id}", d.Admin.GetArticle)
				r.Patch("/{id}", d.Admin.UpdateArticle)
				r.Delete("/{id}", d.Admin.DeleteArticle)
				r.Post("/{id}/toggle-status", d.Admin.ToggleStatus)
			})

			r.With(middleware.RequireEditor).Post("/uploads", d.Admin.UploadCover)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", d.Admin.ListUsers)
				r.Post("/", d.Admin.CreateUser)
				r.Post("/{id}/reset-2fa", d.Admin.ResetTwoFA)
			})
		})
	})

	return r
}

// staticHandler serves embedded assets with a long cache lifetime.
func staticHandler(fsys fs.FS) http.Handler {
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
