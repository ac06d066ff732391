// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"jowam/internal/articles"
	"jowam/internal/cache"
	"jowam/internal/content"
	"jowam/internal/markdown"
	"jowam/internal/models"
	"jowam/internal/render"
)

// homeLatest is how many insights the home page shows.
const homeLatest = 3

// Public serves the public site and its read-only JSON API. Pages without
// query parameters are served from the Valkey page cache when possible.
type Public struct {
	articles  *articles.Manager
	catalog   Catalog
	library   *content.Library
	renderer  *render.Renderer
	pageCache PageCache
	pages     map[string]render.StaticView
}

// NewPublic creates the public handler group. library supplies the FAQ
// and origin pages; pages holds the static informational pages keyed by
// URL name.
func NewPublic(manager *articles.Manager, catalog Catalog, library *content.Library, renderer *render.Renderer, pageCache PageCache, pages map[string]render.StaticView) *Public {
	return &Public{
		articles:  manager,
		catalog:   catalog,
		library:   library,
		renderer:  renderer,
		pageCache: orNoCache(pageCache),
		pages:     pages,
	}
}

type insightsQuery struct {
	Query    string `json:"q"`
	Category string `json:"category"`
	Tag      string `json:"tag"`
	Limit    int    `json:"limit"`
}

func (q insightsQuery) filter() models.ArticleFilter {
	limit := q.Limit
	if limit < 0 {
		limit = 0
	}
	return models.ArticleFilter{
		Category: models.Category(strings.TrimSpace(q.Category)),
		Tag:      strings.TrimSpace(q.Tag),
		Query:    strings.TrimSpace(q.Query),
		Limit:    limit,
	}
}

type catalogQuery struct {
	Query   string `json:"q"`
	Region  string `json:"region"`
	Grade   string `json:"grade"`
	Process string `json:"process"`
}

func (q catalogQuery) filter() models.CatalogFilter {
	return models.CatalogFilter{
		Query:            strings.TrimSpace(q.Query),
		Region:           strings.TrimSpace(q.Region),
		Grade:            strings.TrimSpace(q.Grade),
		ProcessingMethod: strings.TrimSpace(q.Process),
	}
}

// fromCache writes a cached page and reports whether it did. On a miss it
// returns the cache generation to hand to serve; it must be taken before
// the page's data is loaded. Requests with a query string always miss.
func (p *Public) fromCache(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	if r.URL.RawQuery != "" {
		return -1, false
	}
	if html, ok := p.pageCache.Get(r.Context(), key); ok {
		render.Write(w, http.StatusOK, html)
		return 0, true
	}
	return p.pageCache.Generation(r.Context()), false
}

// serve renders a page, caches it when the URL has no query string and
// nothing was invalidated since gen, and writes it.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, key string, gen int64, name string, data *render.PageData) {
	html, err := p.renderer.Render(name, data)
	if err != nil {
		slog.Error("render page failed", "error", err, "template", name, "path", r.URL.Path)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if r.URL.RawQuery == "" {
		p.pageCache.SetAt(r.Context(), key, gen, html)
	}
	render.Write(w, http.StatusOK, html)
}

// unavailable answers public page requests when the store fails.
func (p *Public) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("public page failed", "error", err, "path", r.URL.Path)
	http.Error(w, "Service temporarily unavailable, please try again shortly.", http.StatusServiceUnavailable)
}

// Home renders the landing page with the latest insights.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	gen, hit := p.fromCache(w, r, cache.HomeKey())
	if hit {
		return
	}
	latest, err := p.articles.ListPublished(r.Context(), models.ArticleFilter{Limit: homeLatest})
	if err != nil {
		p.unavailable(w, r, err)
		return
	}
	p.serve(w, r, cache.HomeKey(), gen, "home", &render.PageData{
		Meta: render.PageMeta{
			Title:       p.renderer.Site().Name + " | Specialty Kenyan Green Coffee",
			Description: "Traceable specialty green coffee from Kenya's finest growing regions.",
			URL:         p.renderer.Site().URL + "/",
		},
		Section: "home",
		Content: render.HomeView{Latest: latest},
	})
}

// Insights renders the article listing with search, category and tag
// filters.
func (p *Public) Insights(w http.ResponseWriter, r *http.Request) {
	gen, hit := p.fromCache(w, r, cache.InsightsKey())
	if hit {
		return
	}
	var q insightsQuery
	if err := decodeQuery(r, &q); err != nil {
		slog.Debug("ignoring malformed filters", "error", err, "path", r.URL.Path, "query", r.URL.RawQuery)
	}
	q.Limit = 0

	ctx := r.Context()
	list, err := p.articles.ListPublished(ctx, q.filter())
	if err != nil {
		p.unavailable(w, r, err)
		return
	}
	tags, err := p.articles.PublishedTags(ctx)
	if err != nil {
		p.unavailable(w, r, err)
		return
	}

	p.serve(w, r, cache.InsightsKey(), gen, "insights", &render.PageData{
		Meta: render.PageMeta{
			Title:       "Coffee Insights | " + p.renderer.Site().Name,
			Description: "Articles on Kenyan coffee quality, processing, sustainability and the market.",
			URL:         p.renderer.Site().URL + "/insights",
		},
		Section: "insights",
		Content: render.InsightsView{
			Articles:   list,
			Query:      strings.TrimSpace(q.Query),
			Category:   models.Category(strings.TrimSpace(q.Category)),
			Tag:        strings.TrimSpace(q.Tag),
			Categories: models.Categories,
			Tags:       tags,
		},
	})
}

// Article renders one published article. Drafts and unknown slugs get the
// 404 page.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	key := cache.ArticleKey(slugParam)
	gen, hit := p.fromCache(w, r, key)
	if hit {
		return
	}

	a, err := p.articles.GetBySlug(r.Context(), slugParam)
	if errors.Is(err, articles.ErrNotFound) {
		p.renderer.NotFound(w)
		return
	}
	if err != nil {
		p.unavailable(w, r, err)
		return
	}

	site := p.renderer.Site()
	p.serve(w, r, key, gen, "article", &render.PageData{
		Meta:    render.ArticleMeta(a, site.Name, site.URL),
		Section: "insights",
		Content: render.ArticleView{Article: *a},
	})
}

// Catalog renders available coffee lots, microlots first.
func (p *Public) Catalog(w http.ResponseWriter, r *http.Request) {
	gen, hit := p.fromCache(w, r, cache.CatalogKey())
	if hit {
		return
	}
	var q catalogQuery
	if err := decodeQuery(r, &q); err != nil {
		slog.Debug("ignoring malformed filters", "error", err, "path", r.URL.Path, "query", r.URL.RawQuery)
	}
	filter := q.filter()

	items, facets, err := p.loadCatalog(r.Context(), filter)
	if err != nil {
		p.unavailable(w, r, err)
		return
	}
	micro, lots := render.SplitCatalog(items)

	p.serve(w, r, cache.CatalogKey(), gen, "catalog", &render.PageData{
		Meta: render.PageMeta{
			Title:       "Coffee Catalog | " + p.renderer.Site().Name,
			Description: "Available Kenyan green coffee lots and microlots for export.",
			URL:         p.renderer.Site().URL + "/catalog",
		},
		Section: "catalog",
		Content: render.CatalogView{Microlots: micro, Lots: lots, Facets: facets, Filter: filter},
	})
}

func (p *Public) loadCatalog(ctx context.Context, f models.CatalogFilter) ([]models.CatalogItem, *models.CatalogFacets, error) {
	items, err := p.catalog.ListAvailable(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	facets, err := p.catalog.Facets(ctx)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	return items, facets, nil
}

type faqsQuery struct {
	Query    string `json:"q"`
	Category string `json:"category"`
}

func (q faqsQuery) filter() content.FAQFilter {
	return content.FAQFilter{Query: strings.TrimSpace(q.Query), Category: strings.TrimSpace(q.Category)}
}

// FAQs renders the FAQ page with text search and a category filter.
func (p *Public) FAQs(w http.ResponseWriter, r *http.Request) {
	gen, hit := p.fromCache(w, r, cache.FAQsKey())
	if hit {
		return
	}
	var q faqsQuery
	if err := decodeQuery(r, &q); err != nil {
		slog.Debug("ignoring malformed filters", "error", err, "path", r.URL.Path, "query", r.URL.RawQuery)
	}
	f := q.filter()
	if f.Category != "" && !p.library.HasCategory(f.Category) {
		f.Category = ""
	}
	matches := p.library.FAQs(f)

	p.serve(w, r, cache.FAQsKey(), gen, "faqs", &render.PageData{
		Meta: render.PageMeta{
			Title:       "Frequently Asked Questions | " + p.renderer.Site().Name,
			Description: "Answers to common questions about sourcing, ordering and shipping Kenyan green coffee.",
			URL:         p.renderer.Site().URL + "/faqs",
		},
		Section: "faqs",
		Content: render.FAQsView{
			Groups:         content.GroupFAQs(matches),
			Query:          f.Query,
			Category:       f.Category,
			Categories:     p.library.FAQCategories(),
			Grouped:        f.Query == "" && f.Category == "",
			Total:          len(matches),
			StructuredData: render.FAQStructuredData(p.library.FAQs(content.FAQFilter{})),
		},
	})
}

// Origins renders the growing regions index, featured regions first.
func (p *Public) Origins(w http.ResponseWriter, r *http.Request) {
	gen, hit := p.fromCache(w, r, cache.OriginsKey())
	if hit {
		return
	}
	var view render.OriginsView
	for _, o := range p.library.Origins() {
		if o.Featured {
			view.Featured = append(view.Featured, o)
		} else {
			view.Others = append(view.Others, o)
		}
	}
	p.serve(w, r, cache.OriginsKey(), gen, "origins", &render.PageData{
		Meta: render.PageMeta{
			Title:       "Kenyan Coffee Origins | " + p.renderer.Site().Name,
			Description: "The Kenyan growing regions behind our coffee: altitude, varietals, harvest and cup profile.",
			URL:         p.renderer.Site().URL + "/origins",
		},
		Section: "origins",
		Content: view,
	})
}

// Origin renders one growing region. Unknown slugs get the 404 page.
func (p *Public) Origin(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	o, ok := p.library.Origin(slugParam)
	if !ok {
		p.renderer.NotFound(w)
		return
	}
	key := cache.OriginKey(o.Slug)
	gen, hit := p.fromCache(w, r, key)
	if hit {
		return
	}
	p.serve(w, r, key, gen, "origin", &render.PageData{
		Meta: render.PageMeta{
			Title:       o.Name + " Coffee | " + p.renderer.Site().Name,
			Description: o.Summary,
			URL:         p.renderer.Site().URL + "/origins/" + o.Slug,
		},
		Section: "origins",
		Content: render.OriginView{Origin: o},
	})
}

// StaticPage renders one of the markdown informational pages.
func (p *Public) StaticPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")
	page, ok := p.pages[name]
	if !ok {
		p.renderer.NotFound(w)
		return
	}
	key := cache.StaticKey(name)
	gen, hit := p.fromCache(w, r, key)
	if hit {
		return
	}
	p.serve(w, r, key, gen, "page", &render.PageData{
		Meta: render.PageMeta{
			Title: page.Title + " | " + p.renderer.Site().Name,
			URL:   p.renderer.Site().URL + "/" + name,
		},
		Section: name,
		Content: page,
	})
}

// NotFound renders the 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.NotFound(w)
}

// --- JSON API ---

// articleJSON is a published article with derived reading fields.
type articleJSON struct {
	models.Article
	ReadTime int           `json:"read_time"`
	HTML     template.HTML `json:"html,omitempty"`
}

// APIArticles lists published articles as JSON.
func (p *Public) APIArticles(w http.ResponseWriter, r *http.Request) {
	var q insightsQuery
	if err := decodeQuery(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", "")
		return
	}
	list, err := p.articles.ListPublished(r.Context(), q.filter())
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	out := make([]articleJSON, 0, len(list))
	for _, a := range list {
		out = append(out, articleJSON{Article: a, ReadTime: markdown.ReadTime(a.Content, a.Excerpt)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": out})
}

// APIArticle returns one published article with its rendered body.
func (p *Public) APIArticle(w http.ResponseWriter, r *http.Request) {
	a, err := p.articles.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeArticleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articleJSON{
		Article:  *a,
		ReadTime: markdown.ReadTime(a.Content, a.Excerpt),
		HTML:     markdown.Article(a.Content),
	})
}

// APIFAQs returns the FAQs matching ?q= and ?category= as JSON.
func (p *Public) APIFAQs(w http.ResponseWriter, r *http.Request) {
	var q faqsQuery
	if err := decodeQuery(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"faqs":       p.library.FAQs(q.filter()),
		"categories": p.library.FAQCategories(),
	})
}

// APIOrigins returns every growing region as JSON.
func (p *Public) APIOrigins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"origins": p.library.Origins()})
}

// APICatalog returns available lots and the filter facets as JSON.
func (p *Public) APICatalog(w http.ResponseWriter, r *http.Request) {
	var q catalogQuery
	if err := decodeQuery(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", "")
		return
	}
	items, facets, err := p.loadCatalog(r.Context(), q.filter())
	if err != nil {
		slog.Error("catalog query failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "facets": facets})
}
