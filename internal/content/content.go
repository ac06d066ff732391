// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content holds the fixed reference data of the public site: the
// FAQ list and the coffee growing regions. Both ship as YAML embedded in
// the binary and are read once at startup.
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"jowam/internal/slug"
)

//go:embed data/faqs.yaml
var faqsYAML []byte

//go:embed data/origins.yaml
var originsYAML []byte

// FAQ is one question and answer.
type FAQ struct {
	ID       int    `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// FAQGroup is a run of FAQs sharing a category, in display order.
type FAQGroup struct {
	Category string
	Label    string
	Items    []FAQ
}

// FAQFilter narrows the FAQ list. Query matches question or answer text
// case-insensitively; Category must match exactly when set.
type FAQFilter struct {
	Query    string
	Category string
}

// Origin is a coffee growing region.
type Origin struct {
	Slug          string   `yaml:"slug" json:"slug"`
	Name          string   `yaml:"name" json:"name"`
	Summary       string   `yaml:"summary" json:"summary"`
	Description   string   `yaml:"description" json:"description"`
	Altitude      string   `yaml:"altitude" json:"altitude"`
	MainHarvest   string   `yaml:"main_harvest" json:"main_harvest"`
	FlyHarvest    string   `yaml:"fly_harvest" json:"fly_harvest"`
	Varietals     []string `yaml:"varietals" json:"varietals"`
	Processing    []string `yaml:"processing" json:"processing"`
	CupProfile    string   `yaml:"cup_profile" json:"cup_profile"`
	Cooperatives  int      `yaml:"cooperatives" json:"cooperatives"`
	Featured      bool     `yaml:"featured" json:"featured"`
	SoilType      string   `yaml:"soil_type" json:"soil_type"`
	Rainfall      string   `yaml:"rainfall" json:"rainfall"`
	Temperature   string   `yaml:"temperature" json:"temperature"`
	FarmingSeason string   `yaml:"farming_season" json:"farming_season"`
}

// categoryLabels overrides the title-cased fallback for FAQ categories.
var categoryLabels = map[string]string{
	"general":        "General",
	"products":       "Products",
	"sourcing":       "Sourcing",
	"ordering":       "Ordering",
	"shipping":       "Shipping",
	"quality":        "Quality",
	"sustainability": "Sustainability",
	"payments":       "Payments",
	"partnerships":   "Partnerships",
	"support":        "Support",
}

var titleCase = cases.Title(language.English)

// Library is the parsed reference data. It is read-only after Parse and
// safe for concurrent use.
type Library struct {
	faqs       []FAQ
	categories []string
	origins    []Origin
	bySlug     map[string]int
}

// Load parses the embedded data files.
func Load() (*Library, error) {
	return Parse(faqsYAML, originsYAML)
}

// Parse builds a Library from FAQ and origin YAML documents.
func Parse(faqs, origins []byte) (*Library, error) {
	lib := &Library{bySlug: make(map[string]int)}

	if err := yaml.Unmarshal(faqs, &lib.faqs); err != nil {
		return nil, fmt.Errorf("parse faqs: %w", err)
	}
	seenIDs := make(map[int]bool, len(lib.faqs))
	seenCats := make(map[string]bool)
	for i := range lib.faqs {
		f := &lib.faqs[i]
		f.Category = strings.TrimSpace(f.Category)
		f.Question = strings.TrimSpace(f.Question)
		f.Answer = strings.TrimSpace(f.Answer)
		if f.Category == "" || f.Question == "" || f.Answer == "" {
			return nil, fmt.Errorf("faq %d: category, question and answer are required", f.ID)
		}
		if seenIDs[f.ID] {
			return nil, fmt.Errorf("faq %d: duplicate id", f.ID)
		}
		seenIDs[f.ID] = true
		if !seenCats[f.Category] {
			seenCats[f.Category] = true
			lib.categories = append(lib.categories, f.Category)
		}
	}

	if err := yaml.Unmarshal(origins, &lib.origins); err != nil {
		return nil, fmt.Errorf("parse origins: %w", err)
	}
	for i, o := range lib.origins {
		if !slug.Valid(o.Slug) {
			return nil, fmt.Errorf("origin %q: invalid slug %q", o.Name, o.Slug)
		}
		if strings.TrimSpace(o.Name) == "" {
			return nil, fmt.Errorf("origin %q: name is required", o.Slug)
		}
		if _, dup := lib.bySlug[o.Slug]; dup {
			return nil, fmt.Errorf("origin %q: duplicate slug", o.Slug)
		}
		lib.bySlug[o.Slug] = i
	}
	return lib, nil
}

// FAQs returns the questions matching f in file order.
func (l *Library) FAQs(f FAQFilter) []FAQ {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)

	out := make([]FAQ, 0, len(l.faqs))
	for _, faq := range l.faqs {
		if category != "" && faq.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(faq.Question), query) &&
			!strings.Contains(strings.ToLower(faq.Answer), query) {
			continue
		}
		out = append(out, faq)
	}
	return out
}

// FAQCategories returns every category in order of first appearance.
func (l *Library) FAQCategories() []string {
	return append([]string(nil), l.categories...)
}

// HasCategory reports whether any FAQ uses category c.
func (l *Library) HasCategory(c string) bool {
	for _, known := range l.categories {
		if known == c {
			return true
		}
	}
	return false
}

// CategoryLabel is the display name of an FAQ category.
func CategoryLabel(c string) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return titleCase.String(strings.ReplaceAll(c, "-", " "))
}

// GroupFAQs splits faqs into consecutive runs by category, keeping the
// order categories first appear in.
func GroupFAQs(faqs []FAQ) []FAQGroup {
	var groups []FAQGroup
	index := make(map[string]int)
	for _, f := range faqs {
		i, ok := index[f.Category]
		if !ok {
			i = len(groups)
			index[f.Category] = i
			groups = append(groups, FAQGroup{Category: f.Category, Label: CategoryLabel(f.Category)})
		}
		groups[i].Items = append(groups[i].Items, f)
	}
	return groups
}

// Origins returns every region, featured ones first, each group in file
// order.
func (l *Library) Origins() []Origin {
	out := make([]Origin, 0, len(l.origins))
	for _, o := range l.origins {
		if o.Featured {
			out = append(out, o)
		}
	}
	for _, o := range l.origins {
		if !o.Featured {
			out = append(out, o)
		}
	}
	return out
}

// Origin looks up a region by slug.
func (l *Library) Origin(s string) (Origin, bool) {
	i, ok := l.bySlug[s]
	if !ok {
		return Origin{}, false
	}
	return l.origins[i], true
}
