// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an Insights article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s ArticleStatus) Valid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

// Category is the fixed editorial category of an article.
type Category string

const (
	CategoryQuality        Category = "quality"
	CategoryProcessing     Category = "processing"
	CategorySustainability Category = "sustainability"
	CategoryEducation      Category = "education"
	CategoryMarket         Category = "market"
	CategoryClimate        Category = "climate"
	CategoryBrewing        Category = "brewing"
	CategorySupplyChain    Category = "supply chain"
	CategorySocialImpact   Category = "social impact"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryQuality,
	CategoryProcessing,
	CategorySustainability,
	CategoryEducation,
	CategoryMarket,
	CategoryClimate,
	CategoryBrewing,
	CategorySupplyChain,
	CategorySocialImpact,
}

// Valid reports whether c is a member of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the category with its first letter upper-cased, as shown
// in category badges and select options.
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Article is a blog post in the Insights section. Tags and category are
// inline fields, so deleting an article never cascades.
type Article struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     string        `json:"excerpt"`
	Content     string        `json:"content"`
	CoverImage  *string       `json:"cover_image,omitempty"`
	Category    Category      `json:"category"`
	Tags        []string      `json:"tags"`
	Author      string        `json:"author"`
	Status      ArticleStatus `json:"status"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is visible on the public site.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// HasTag reports whether the article carries the given tag (exact match).
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ArticleOrder selects the sort order of an article listing.
type ArticleOrder int

const (
	// OrderCreatedDesc is the admin listing order.
	OrderCreatedDesc ArticleOrder = iota
	// OrderPublishedDesc is the public listing order.
	OrderPublishedDesc
)

// ArticleFilter narrows an article listing. Zero values mean "no constraint".
type ArticleFilter struct {
	Status   ArticleStatus // empty = any status
	Category Category
	Tag      string
	Query    string // case-insensitive substring of title or excerpt
	OrderBy  ArticleOrder
	Limit    int // 0 = unlimited
}
