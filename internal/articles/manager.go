// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package articles implements the article lifecycle: validation, slug
// uniqueness, draft/published transitions and the public read path. It
// talks to storage and authentication only through the Repository and
// AuthGate interfaces.
package articles

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"jowam/internal/models"
)

// Input carries the fields of a new article. An empty Status means draft.
type Input struct {
	Title      string               `json:"title"`
	Slug       string               `json:"slug"`
	Excerpt    string               `json:"excerpt"`
	Content    string               `json:"content"`
	CoverImage *string              `json:"cover_image"`
	Category   models.Category      `json:"category"`
	Tags       []string             `json:"tags"`
	Author     string               `json:"author"`
	Status     models.ArticleStatus `json:"status"`
}

// Patch is a partial update. Nil fields are left untouched; an empty
// CoverImage clears the cover.
type Patch struct {
	Title      *string               `json:"title"`
	Slug       *string               `json:"slug"`
	Excerpt    *string               `json:"excerpt"`
	Content    *string               `json:"content"`
	CoverImage *string               `json:"cover_image"`
	Category   *models.Category      `json:"category"`
	Tags       *[]string             `json:"tags"`
	Author     *string               `json:"author"`
	Status     *models.ArticleStatus `json:"status"`
}

// Stats summarizes the content store for the admin dashboard.
type Stats struct {
	Total      int              `json:"total"`
	Published  int              `json:"published"`
	Drafts     int              `json:"drafts"`
	Categories int              `json:"categories"`
	Recent     []models.Article `json:"recent"`
}

// recentLimit is how many articles the dashboard shows.
const recentLimit = 5

// Manager coordinates article writes and reads.
type Manager struct {
	repo Repository
	auth AuthGate
	now  func() time.Time
}

// NewManager creates a Manager backed by the given store and auth gate.
func NewManager(repo Repository, auth AuthGate) *Manager {
	return &Manager{repo: repo, auth: auth, now: time.Now}
}

// Create validates and stores a new article. Published articles get
// published_at stamped with the current time.
func (m *Manager) Create(ctx context.Context, in Input) (*models.Article, error) {
	if err := m.requireEditor(ctx); err != nil {
		return nil, err
	}

	a := &models.Article{
		Title:      in.Title,
		Slug:       in.Slug,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		CoverImage: in.CoverImage,
		Category:   in.Category,
		Tags:       in.Tags,
		Author:     in.Author,
		Status:     in.Status,
	}
	if a.Status == "" {
		a.Status = models.ArticleStatusDraft
	}
	normalize(a)
	if err := validate(a); err != nil {
		return nil, err
	}
	if err := m.ensureSlugFree(ctx, a.Slug, uuid.Nil); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.IsPublished() {
		a.PublishedAt = &now
	}

	created, err := m.repo.Create(ctx, a)
	if err != nil {
		return nil, storeErr("create article", err)
	}
	return created, nil
}

// Update applies a partial patch to an existing article. The merged result
// is validated as a whole. Publishing a draft stamps published_at;
// unpublishing keeps the original timestamp.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, p Patch) (*models.Article, error) {
	updated, _, err := m.Revise(ctx, id, p)
	return updated, err
}

// Revise is Update that also returns the article as it was before the
// patch, so callers can drop anything keyed by the old slug.
func (m *Manager) Revise(ctx context.Context, id uuid.UUID, p Patch) (updated, previous *models.Article, err error) {
	if err := m.requireEditor(ctx); err != nil {
		return nil, nil, err
	}

	current, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr("find article", err)
	}
	if current == nil {
		return nil, nil, ErrNotFound
	}

	merged := *current
	p.apply(&merged)
	normalize(&merged)
	if err := validate(&merged); err != nil {
		return nil, nil, err
	}
	if merged.Slug != current.Slug {
		if err := m.ensureSlugFree(ctx, merged.Slug, current.ID); err != nil {
			return nil, nil, err
		}
	}

	now := m.now().UTC()
	if merged.IsPublished() && !current.IsPublished() {
		merged.PublishedAt = &now
	}
	merged.UpdatedAt = now

	updated, err = m.repo.Update(ctx, &merged)
	if err != nil {
		return nil, nil, storeErr("update article", err)
	}
	if updated == nil {
		return nil, nil, ErrNotFound
	}
	return updated, current, nil
}

// ToggleStatus flips an article between draft and published.
func (m *Manager) ToggleStatus(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	if err := m.requireEditor(ctx); err != nil {
		return nil, err
	}

	current, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find article", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	next := models.ArticleStatusPublished
	if current.IsPublished() {
		next = models.ArticleStatusDraft
	}
	return m.Update(ctx, id, Patch{Status: &next})
}

// Delete removes an article permanently and returns the removed record.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	if err := m.requireEditor(ctx); err != nil {
		return nil, err
	}

	current, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find article", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	deleted, err := m.repo.Delete(ctx, id)
	if err != nil {
		return nil, storeErr("delete article", err)
	}
	if !deleted {
		return nil, ErrNotFound
	}
	return current, nil
}

// Get returns any article by id, draft or published.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	if err := m.requireReader(ctx); err != nil {
		return nil, err
	}

	a, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find article", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// ListPublished returns published articles, newest publication first.
// The status and order of the filter are overridden.
func (m *Manager) ListPublished(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	filter.Status = models.ArticleStatusPublished
	filter.OrderBy = models.OrderPublishedDesc

	list, err := m.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list published articles", err)
	}
	if list == nil {
		list = []models.Article{}
	}
	return list, nil
}

// ListAll returns every article matching the filter, newest first.
func (m *Manager) ListAll(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	if err := m.requireReader(ctx); err != nil {
		return nil, err
	}

	filter.OrderBy = models.OrderCreatedDesc
	list, err := m.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list articles", err)
	}
	if list == nil {
		list = []models.Article{}
	}
	return list, nil
}

// GetBySlug returns a published article. Drafts are reported as
// ErrNotFound so unpublished URLs cannot be probed.
func (m *Manager) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a, err := m.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr("find article by slug", err)
	}
	if a == nil || !a.IsPublished() {
		return nil, ErrNotFound
	}
	return a, nil
}

// PublishedTags returns the distinct tags used by published articles,
// sorted alphabetically, for the public tag filter.
func (m *Manager) PublishedTags(ctx context.Context) ([]string, error) {
	list, err := m.ListPublished(ctx, models.ArticleFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	tags := []string{}
	for _, a := range list {
		for _, t := range a.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// Stats computes the dashboard counters.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	if err := m.requireReader(ctx); err != nil {
		return nil, err
	}

	list, err := m.repo.List(ctx, models.ArticleFilter{OrderBy: models.OrderCreatedDesc})
	if err != nil {
		return nil, storeErr("list articles", err)
	}

	s := &Stats{Total: len(list), Recent: []models.Article{}}
	categories := make(map[models.Category]bool)
	for _, a := range list {
		if a.IsPublished() {
			s.Published++
		} else {
			s.Drafts++
		}
		categories[a.Category] = true
	}
	s.Categories = len(categories)

	if len(list) > recentLimit {
		list = list[:recentLimit]
	}
	s.Recent = append(s.Recent, list...)
	return s, nil
}

// ensureSlugFree fails with ErrDuplicateSlug when an article other than
// self already uses slug. The unique index in the store backs this check.
func (m *Manager) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := m.repo.FindBySlug(ctx, slug)
	if err != nil {
		return storeErr("check slug", err)
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("slug %q: %w", slug, ErrDuplicateSlug)
	}
	return nil
}

func (m *Manager) requireReader(ctx context.Context) error {
	if _, ok := m.auth.Identity(ctx); !ok {
		return ErrUnauthorized
	}
	return nil
}

func (m *Manager) requireEditor(ctx context.Context) error {
	id, ok := m.auth.Identity(ctx)
	if !ok || !id.CanMutate {
		return ErrUnauthorized
	}
	return nil
}

func (p Patch) apply(a *models.Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Slug != nil {
		a.Slug = *p.Slug
	}
	if p.Excerpt != nil {
		a.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.CoverImage != nil {
		cover := *p.CoverImage
		a.CoverImage = &cover
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Tags != nil {
		a.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Author != nil {
		a.Author = *p.Author
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}
