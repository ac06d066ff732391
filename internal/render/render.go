// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns public site data into HTML. Each page template is
// parsed together with the shared base layout from the embedded
// filesystem, and rendered output is returned as bytes so handlers can
// store it in the page cache.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"jowam/internal/content"
	"jowam/internal/markdown"
	"jowam/internal/models"
)

//go:embed templates/site/*.html
var siteFS embed.FS

// PlaceholderCover is shown for articles without a cover image.
const PlaceholderCover = "/static/placeholder-cover.svg"

const (
	longDateLayout  = "January 2, 2006"
	shortDateLayout = "Jan 2, 2006"
)

// Site holds the values every page shows in its header and footer.
type Site struct {
	Name         string
	URL          string // absolute base URL, no trailing slash
	ContactEmail string
	ContactPhone string
}

// PageMeta is the per-page document metadata (title, description, social
// image, canonical URL).
type PageMeta struct {
	Title       string
	Description string
	Image       string
	URL         string
}

// PageData is passed to every site template. Content carries the
// page-specific view.
type PageData struct {
	Site    Site
	Meta    PageMeta
	Section string // active navigation item
	Year    int
	Content any
}

// HomeView lists the latest published insights.
type HomeView struct {
	Latest []models.Article
}

// InsightsView is the filtered article listing.
type InsightsView struct {
	Articles   []models.Article
	Query      string
	Category   models.Category
	Tag        string
	Categories []models.Category
	Tags       []string
}

// ArticleView is a single article page.
type ArticleView struct {
	Article models.Article
}

// CatalogView is the coffee catalog, split into microlots and regular lots.
type CatalogView struct {
	Microlots []models.CatalogItem
	Lots      []models.CatalogItem
	Facets    *models.CatalogFacets
	Filter    models.CatalogFilter
}

// FAQsView is the searchable FAQ page. Grouped hides the category
// headings once a search or category filter is active.
type FAQsView struct {
	Groups     []content.FAQGroup
	Query      string
	Category   string
	Categories []string
	Grouped    bool
	Total      int
	// StructuredData is the schema.org FAQPage for every question, not
	// just the filtered ones.
	StructuredData FAQPage
}

// OriginsView lists the growing regions.
type OriginsView struct {
	Featured []content.Origin
	Others   []content.Origin
}

// OriginView is a single growing region.
type OriginView struct {
	Origin content.Origin
}

// FAQPage is the schema.org FAQPage document embedded as JSON-LD.
type FAQPage struct {
	Context    string        `json:"@context"`
	Type       string        `json:"@type"`
	MainEntity []FAQQuestion `json:"mainEntity"`
}

// FAQQuestion is one schema.org Question with its accepted answer.
type FAQQuestion struct {
	Type           string    `json:"@type"`
	Name           string    `json:"name"`
	AcceptedAnswer FAQAnswer `json:"acceptedAnswer"`
}

// FAQAnswer is a schema.org Answer.
type FAQAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// FAQStructuredData builds the FAQPage JSON-LD for faqs.
func FAQStructuredData(faqs []content.FAQ) FAQPage {
	page := FAQPage{Context: "https://schema.org", Type: "FAQPage", MainEntity: make([]FAQQuestion, 0, len(faqs))}
	for _, f := range faqs {
		page.MainEntity = append(page.MainEntity, FAQQuestion{
			Type:           "Question",
			Name:           f.Question,
			AcceptedAnswer: FAQAnswer{Type: "Answer", Text: f.Answer},
		})
	}
	return page
}

// StaticView is a markdown-backed informational page.
type StaticView struct {
	Title string
	Body  template.HTML
}

// SplitCatalog separates microlots from regular lots, preserving order.
func SplitCatalog(items []models.CatalogItem) (microlots, lots []models.CatalogItem) {
	for _, it := range items {
		if it.IsMicrolot {
			microlots = append(microlots, it)
		} else {
			lots = append(lots, it)
		}
	}
	return microlots, lots
}

// ArticleMeta builds the document metadata for an article page. The
// description falls back to the title when the excerpt is empty.
func ArticleMeta(a *models.Article, siteName, baseURL string) PageMeta {
	desc := a.Excerpt
	if strings.TrimSpace(desc) == "" {
		desc = a.Title
	}
	return PageMeta{
		Title:       a.Title + " | " + siteName + " Insights",
		Description: desc,
		Image:       CoverURL(a),
		URL:         strings.TrimRight(baseURL, "/") + "/insights/" + a.Slug,
	}
}

// CoverURL returns the article's cover image or the placeholder.
func CoverURL(a *models.Article) string {
	if a.CoverImage == nil || strings.TrimSpace(*a.CoverImage) == "" {
		return PlaceholderCover
	}
	return *a.CoverImage
}

// Renderer executes the parsed site templates.
type Renderer struct {
	templates map[string]*template.Template
	site      Site
	now       func() time.Time
}

func formatDate(layout string) func(*time.Time) string {
	return func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(layout)
	}
}

// New parses every page template under templates/site with base.html.
func New(site Site) (*Renderer, error) {
	funcs := template.FuncMap{
		"longDate":  formatDate(longDateLayout),
		"shortDate": formatDate(shortDateLayout),
		"readTime": func(a models.Article) int {
			return markdown.ReadTime(a.Content, a.Excerpt)
		},
		"articleHTML": markdown.Article,
		"cover": func(a models.Article) string {
			return CoverURL(&a)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"join":          strings.Join,
		"categoryLabel": content.CategoryLabel,
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
	}

	entries, err := fs.ReadDir(siteFS, "templates/site")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template), site: site, now: time.Now}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(
			siteFS, "templates/site/base.html", "templates/site/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return r, nil
}

// Site returns the site settings the renderer was created with.
func (rn *Renderer) Site() Site {
	return rn.site
}

// Render executes the named page and returns the HTML.
func (rn *Renderer) Render(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	data.Site = rn.site
	data.Year = rn.now().Year()
	if data.Meta.Title == "" {
		data.Meta.Title = rn.site.Name
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Write sends rendered HTML with the given status.
func Write(w http.ResponseWriter, status int, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

// NotFound renders the 404 page, falling back to plain text if the
// template fails.
func (rn *Renderer) NotFound(w http.ResponseWriter) {
	html, err := rn.Render("404", &PageData{Meta: PageMeta{Title: "Page not found | " + rn.site.Name}})
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	Write(w, http.StatusNotFound, html)
}
