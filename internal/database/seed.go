// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"jowam/internal/models"
	"jowam/internal/slug"
)

//go:embed seeddata/catalog.yaml
var catalogYAML []byte

//go:embed seeddata/articles.yaml
var articlesYAML []byte

// SeedOptions controls the first-start admin account.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// seedArticle is the YAML shape of a bundled Insights article.
type seedArticle struct {
	Title    string          `yaml:"title"`
	Excerpt  string          `yaml:"excerpt"`
	Content  string          `yaml:"content"`
	Category models.Category `yaml:"category"`
	Tags     []string        `yaml:"tags"`
	Author   string          `yaml:"author"`
}

// Seed populates empty tables with initial data: a default admin user, the
// coffee catalog and a few published articles. Each table is seeded only
// when it has no rows, so Seed is safe to call on every start.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if err := seedAdmin(ctx, db, opts); err != nil {
		return err
	}
	if err := seedCatalog(ctx, db); err != nil {
		return err
	}
	return seedArticles(ctx, db)
}

func isEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return false, fmt.Errorf("seed check %s: %w", table, err)
	}
	return count == 0, nil
}

func seedAdmin(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	empty, err := isEmpty(ctx, db, "users")
	if err != nil || !empty {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// 2FA is not enabled; the admin sets it up on first login.
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, opts.AdminEmail, string(hash), "Admin", models.RoleAdmin, false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user", "email", opts.AdminEmail)
	return nil
}

// CatalogSeed returns the bundled catalog lots.
func CatalogSeed() ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := yaml.Unmarshal(catalogYAML, &items); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return items, nil
}

func seedCatalog(ctx context.Context, db *sql.DB) error {
	empty, err := isEmpty(ctx, db, "catalog_items")
	if err != nil || !empty {
		return err
	}

	items, err := CatalogSeed()
	if err != nil {
		return err
	}

	for _, it := range items {
		if it.AvailabilityStatus == "" {
			it.AvailabilityStatus = models.AvailabilityAvailable
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO catalog_items (name, region, variety, grade, processing_method, flavor_notes,
				description, image_url, altitude, farm_details, is_microlot, availability_status, seasonal_notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, it.Name, it.Region, it.Variety, it.Grade, it.ProcessingMethod, it.FlavorNotes,
			it.Description, it.ImageURL, it.Altitude, it.FarmDetails, it.IsMicrolot,
			it.AvailabilityStatus, it.SeasonalNotes)
		if err != nil {
			return fmt.Errorf("seed catalog item %q: %w", it.Name, err)
		}
	}

	slog.Info("database seeded with catalog", "items", len(items))
	return nil
}

func seedArticles(ctx context.Context, db *sql.DB) error {
	empty, err := isEmpty(ctx, db, "articles")
	if err != nil || !empty {
		return err
	}

	var items []seedArticle
	if err := yaml.Unmarshal(articlesYAML, &items); err != nil {
		return fmt.Errorf("parse article seed: %w", err)
	}

	now := time.Now().UTC()
	for i, a := range items {
		// Space the timestamps so listings have a stable order.
		at := now.Add(-time.Duration(len(items)-i) * time.Hour)
		_, err := db.ExecContext(ctx, `
			INSERT INTO articles (title, slug, excerpt, content, category, tags, author,
				status, published_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $9)
		`, a.Title, slug.Generate(a.Title), a.Excerpt, a.Content, a.Category, a.Tags,
			a.Author, models.ArticleStatusPublished, at)
		if err != nil {
			return fmt.Errorf("seed article %q: %w", a.Title, err)
		}
	}

	slog.Info("database seeded with articles", "articles", len(items))
	return nil
}
