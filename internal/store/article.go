// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"jowam/internal/articles"
	"jowam/internal/models"
)

const articleColumns = `id, title, slug, excerpt, content, cover_image, category, tags,
	author, status, published_at, created_at, updated_at`

// ArticleStore is the PostgreSQL content store for Insights articles.
// It satisfies articles.Repository.
type ArticleStore struct {
	db *sql.DB
}

var _ articles.Repository = (*ArticleStore)(nil)

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// scanArticle reads one row selected with articleColumns. The tags array
// goes through a pgtype map because database/sql has no text[] support.
func scanArticle(row rowScanner, m *pgtype.Map) (*models.Article, error) {
	a := &models.Article{}
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Content, &a.CoverImage,
		&a.Category, m.SQLScanner(&a.Tags), &a.Author, &a.Status,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}

// Create inserts a new article. Timestamps come from the caller so the
// manager's clock is the single source of truth.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, slug, excerpt, content, cover_image, category, tags,
		                      author, status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+articleColumns,
		a.Title, a.Slug, a.Excerpt, a.Content, a.CoverImage, a.Category, tagsArg(a.Tags),
		a.Author, a.Status, a.PublishedAt, a.CreatedAt, a.UpdatedAt,
	)

	created, err := scanArticle(row, pgtype.NewMap())
	if isUniqueViolation(err, "articles_slug_key") {
		return nil, fmt.Errorf("create article: %w", articles.ErrDuplicateSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return created, nil
}

// Update overwrites every mutable column of the article. Returns nil if
// the row no longer exists.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE articles SET
			title = $1, slug = $2, excerpt = $3, content = $4, cover_image = $5,
			category = $6, tags = $7, author = $8, status = $9,
			published_at = $10, updated_at = $11
		WHERE id = $12
		RETURNING `+articleColumns,
		a.Title, a.Slug, a.Excerpt, a.Content, a.CoverImage,
		a.Category, tagsArg(a.Tags), a.Author, a.Status,
		a.PublishedAt, a.UpdatedAt, a.ID,
	)

	updated, err := scanArticle(row, pgtype.NewMap())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err, "articles_slug_key") {
		return nil, fmt.Errorf("update article: %w", articles.ErrDuplicateSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return updated, nil
}

// Delete removes an article by ID and reports whether a row was removed.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article rows affected: %w", err)
	}
	return n > 0, nil
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row, pgtype.NewMap())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves an article of any status by slug. Returns nil if
// not found; visibility rules belong to the caller.
func (s *ArticleStore) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
	a, err := scanArticle(row, pgtype.NewMap())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// List returns the articles matching the filter in the requested order.
func (s *ArticleStore) List(ctx context.Context, f models.ArticleFilter) ([]models.Article, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Category != "" {
		where = append(where, "category = "+arg(f.Category))
	}
	if f.Tag != "" {
		where = append(where, arg(f.Tag)+" = ANY(tags)")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg(likePattern(q))
		where = append(where, "(title ILIKE "+p+" OR excerpt ILIKE "+p+")")
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch f.OrderBy {
	case models.OrderPublishedDesc:
		query += " ORDER BY published_at DESC NULLS LAST, created_at DESC"
	default:
		query += " ORDER BY created_at DESC"
	}
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	items := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows, m)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// tagsArg makes sure a nil slice is stored as an empty array, not NULL.
func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
