// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jowam/internal/articles"
	"jowam/internal/cache"
	"jowam/internal/content"
	"jowam/internal/database"
	"jowam/internal/handlers"
	"jowam/internal/mailer"
	"jowam/internal/metrics"
	"jowam/internal/middleware"
	"jowam/internal/render"
	"jowam/internal/router"
	"jowam/internal/session"
	"jowam/internal/storage"
	"jowam/internal/store"
	"jowam/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, seed empty tables and start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	// Seeding is idempotent per table; the catalog only ever comes from it.
	if err := database.Seed(cmd.Context(), db, database.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		return err
	}

	poolStats := metrics.NewPoolStatsCollector(db)
	poolStats.Start(15 * time.Second)
	defer poolStats.Stop()

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies)

	var pageCache *cache.PageCache
	if cfg.PageCacheTTL > 0 {
		pageCache = cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)
	} else {
		slog.Warn("page cache disabled")
	}

	renderer, err := render.New(render.Site{
		Name:         cfg.SiteName,
		URL:          cfg.SiteURL,
		ContactEmail: cfg.ContactEmail,
		ContactPhone: cfg.ContactPhone,
	})
	if err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}

	pages, err := handlers.LoadPages(web.PagesFS)
	if err != nil {
		return fmt.Errorf("load static pages: %w", err)
	}
	library, err := content.Load()
	if err != nil {
		return fmt.Errorf("load site content: %w", err)
	}

	// Object storage is optional; the site works without uploads.
	var covers handlers.CoverStorage
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return fmt.Errorf("initialize s3 storage: %w", err)
	}
	if storageClient != nil {
		covers = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, cover uploads disabled")
	}

	mailCfg := mailer.Config{
		ServiceID:          cfg.EmailJSServiceID,
		ContactTemplate:    cfg.EmailJSContactTemplate,
		SamplesTemplate:    cfg.EmailJSSamplesTemplate,
		NewsletterTemplate: cfg.EmailJSNewsletterTemplate,
		PublicKey:          cfg.EmailJSPublicKey,
		PrivateKey:         cfg.EmailJSPrivateKey,
	}
	if !mailCfg.Configured() {
		slog.Warn("emailjs not configured, form submissions will fail over to direct contact")
	}

	userStore := store.NewUserStore(db)
	manager := articles.NewManager(store.NewArticleStore(db), middleware.SessionGate{})

	formLimiter := middleware.NewRateLimiter(cfg.FormRateLimit, cfg.RateWindow, 0)
	defer formLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.RateWindow, 0)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions: sessionStore,
		Admin:    handlers.NewAdmin(manager, userStore, covers, pageCache),
		Auth:     handlers.NewAuth(sessionStore, userStore, cfg.TOTPIssuer),
		Public:   handlers.NewPublic(manager, store.NewCatalogStore(db), library, renderer, pageCache, pages),
		Forms: handlers.NewForms(mailer.New(mailCfg), handlers.Contact{
			Recipient:     cfg.LeadRecipient,
			FallbackEmail: cfg.ContactEmail,
			FallbackPhone: cfg.ContactPhone,
		}),
		Static:        web.Static(),
		FormLimiter:   formLimiter,
		LoginLimiter:  loginLimiter,
		SecureCookies: cfg.SecureCookies,
	})

	// Start from a clean cache so pages rendered by an older build are
	// not served.
	pageCache.InvalidateAll(cmd.Context())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
