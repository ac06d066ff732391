package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"jowam/internal/articles"
	"jowam/internal/mailer"
	"jowam/internal/middleware"
	"jowam/internal/models"
	"jowam/internal/session"
	"jowam/internal/store"
)

// memRepo is an in-memory articles.Repository.
type memRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]models.Article
	failAll error
}

func newMemRepo(seed ...models.Article) *memRepo {
	r := &memRepo{byID: make(map[uuid.UUID]models.Article)}
	for _, a := range seed {
		r.byID[a.ID] = a
	}
	return r
}

func (r *memRepo) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, other := range r.byID {
		if other.Slug == a.Slug {
			return nil, articles.ErrDuplicateSlug
		}
	}
	c := *a
	c.ID = uuid.New()
	r.byID[c.ID] = c
	return &c, nil
}

func (r *memRepo) Update(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	if _, ok := r.byID[a.ID]; !ok {
		return nil, nil
	}
	c := *a
	r.byID[a.ID] = c
	return &c, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return false, r.failAll
	}
	_, ok := r.byID[id]
	delete(r.byID, id)
	return ok, nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memRepo) FindBySlug(_ context.Context, slug string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	for _, a := range r.byID {
		if a.Slug == slug {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(_ context.Context, f models.ArticleFilter) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	var out []models.Article
	for _, a := range r.byID {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Tag != "" && !a.HasTag(f.Tag) {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			if !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Excerpt), q) {
				continue
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.OrderBy == models.OrderPublishedDesc && out[i].PublishedAt != nil && out[j].PublishedAt != nil {
			return out[i].PublishedAt.After(*out[j].PublishedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// fakeUsers is an in-memory UserStore. Passwords are kept in plain text
// in PasswordHash.
type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*models.User
	findErr error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, email, password, displayName string, role models.Role) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return nil, store.ErrEmailTaken
		}
	}
	u := &models.User{ID: uuid.New(), Email: email, PasswordHash: password, DisplayName: displayName, Role: role}
	f.byID[u.ID] = u
	c := *u
	return &c, nil
}

func (f *fakeUsers) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].TOTPSecret = &secret
	return nil
}

func (f *fakeUsers) EnableTOTP(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].TOTPEnabled = true
	return nil
}

func (f *fakeUsers) ResetTOTP(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].TOTPSecret = nil
	f.byID[id].TOTPEnabled = false
	return nil
}

func (f *fakeUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

// fakeSessions records the last session written.
type fakeSessions struct {
	created   *session.Data
	updated   *session.Data
	destroyed bool
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, d *session.Data) (string, error) {
	c := *d
	f.created = &c
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid"})
	return "sid", nil
}

func (f *fakeSessions) Update(_ context.Context, _ *http.Request, d *session.Data) error {
	c := *d
	f.updated = &c
	return nil
}

func (f *fakeSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	f.destroyed = true
	return nil
}

// fakeMailer captures sent messages.
type fakeMailer struct {
	err    error
	sent   []mailer.Template
	params []map[string]string
}

func (f *fakeMailer) Send(_ context.Context, t mailer.Template, p map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, t)
	f.params = append(f.params, p)
	return nil
}

// fakeCovers stores uploads in memory.
type fakeCovers struct {
	put     [][]byte
	putExt  []string
	deleted []string
	putErr  error
}

func (f *fakeCovers) PutCover(_ context.Context, ext, _ string, body io.Reader, _ int64) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.put = append(f.put, b)
	f.putExt = append(f.putExt, ext)
	return "https://cdn.example/covers/new." + ext, nil
}

func (f *fakeCovers) DeleteByURL(_ context.Context, u string) error {
	f.deleted = append(f.deleted, u)
	return nil
}

// fakeCatalog returns fixed items.
type fakeCatalog struct {
	items  []models.CatalogItem
	facets models.CatalogFacets
	err    error
	last   models.CatalogFilter
}

func (f *fakeCatalog) ListAvailable(_ context.Context, filter models.CatalogFilter) ([]models.CatalogItem, error) {
	f.last = filter
	return f.items, f.err
}

func (f *fakeCatalog) Facets(context.Context) (*models.CatalogFacets, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.facets, nil
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connection refused")

// withSession attaches a session to the request as LoadSession would.
func withSession(r *http.Request, role models.Role, twoFADone bool) *http.Request {
	sess := &session.Data{
		UserID:      uuid.New(),
		Email:       string(role) + "@jowamcoffee.com",
		DisplayName: string(role),
		Role:        role,
		TwoFADone:   twoFADone,
	}
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func publishedArticle(title, slug string, published time.Time) models.Article {
	return models.Article{
		ID:          uuid.New(),
		Title:       title,
		Slug:        slug,
		Excerpt:     "About " + title,
		Content:     "## Heading\n\nBody text for " + title + ".",
		Category:    models.CategoryQuality,
		Tags:        []string{"kenya"},
		Author:      "Jowam Team",
		Status:      models.ArticleStatusPublished,
		PublishedAt: &published,
		CreatedAt:   published,
		UpdatedAt:   published,
	}
}

func draftArticle(title, slug string, created time.Time) models.Article {
	a := publishedArticle(title, slug, created)
	a.Status = models.ArticleStatusDraft
	a.PublishedAt = nil
	return a
}
