// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package articles

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"jowam/internal/models"
)

var (
	validCategories []interface{}
	validStatuses   = []interface{}{models.ArticleStatusDraft, models.ArticleStatusPublished}
)

func init() {
	for _, c := range models.Categories {
		validCategories = append(validCategories, c)
	}
}

type fieldCheck struct {
	field string
	value interface{}
	rules []validation.Rule
}

// validate checks the article fields in a fixed order and reports the
// first failure. validation.ValidateStruct is not used because its error
// map has no order.
func validate(a *models.Article) error {
	checks := []fieldCheck{
		{"title", a.Title, []validation.Rule{
			validation.Required.Error("title is required"),
		}},
		{"slug", a.Slug, []validation.Rule{
			validation.Required.Error("slug is required"),
		}},
		{"excerpt", a.Excerpt, []validation.Rule{
			validation.Required.Error("excerpt is required"),
		}},
		{"content", strings.TrimSpace(a.Content), []validation.Rule{
			validation.Required.Error("content is required"),
		}},
		{"category", a.Category, []validation.Rule{
			validation.Required.Error("category is required"),
			validation.In(validCategories...).Error("category is not one of the known categories"),
		}},
		{"author", a.Author, []validation.Rule{
			validation.Required.Error("author is required"),
		}},
		{"status", a.Status, []validation.Rule{
			validation.Required.Error("status is required"),
			validation.In(validStatuses...).Error("status must be draft or published"),
		}},
	}

	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return &ValidationError{Field: c.field, Message: err.Error()}
		}
	}
	return nil
}

// normalize trims the single-line text fields and cleans the tag list:
// blanks and duplicates are dropped, first occurrence order is kept.
func normalize(a *models.Article) {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = strings.TrimSpace(a.Slug)
	a.Excerpt = strings.TrimSpace(a.Excerpt)
	a.Author = strings.TrimSpace(a.Author)
	a.Category = models.Category(strings.TrimSpace(string(a.Category)))

	if a.CoverImage != nil {
		cover := strings.TrimSpace(*a.CoverImage)
		if cover == "" {
			a.CoverImage = nil
		} else {
			a.CoverImage = &cover
		}
	}

	tags := make([]string, 0, len(a.Tags))
	seen := make(map[string]bool, len(a.Tags))
	for _, t := range a.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	a.Tags = tags
}
