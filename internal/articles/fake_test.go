package articles

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"jowam/internal/models"
)

// memRepo is an in-memory Repository with a unique slug index.
type memRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Article
	// failWith, when set, is returned from every call.
	failWith error
	// skipSlugLookup makes FindBySlug miss, so only the unique index
	// catches duplicates.
	skipSlugLookup bool
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[uuid.UUID]models.Article)}
}

func (r *memRepo) slugTaken(slug string, self uuid.UUID) bool {
	for id, a := range r.rows {
		if a.Slug == slug && id != self {
			return true
		}
	}
	return false
}

func (r *memRepo) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.slugTaken(a.Slug, uuid.Nil) {
		return nil, ErrDuplicateSlug
	}
	row := *a
	row.ID = uuid.New()
	r.rows[row.ID] = row
	out := row
	return &out, nil
}

func (r *memRepo) Update(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if _, ok := r.rows[a.ID]; !ok {
		return nil, nil
	}
	if r.slugTaken(a.Slug, a.ID) {
		return nil, ErrDuplicateSlug
	}
	r.rows[a.ID] = *a
	out := *a
	return &out, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memRepo) FindBySlug(_ context.Context, slug string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.skipSlugLookup {
		return nil, nil
	}
	for _, a := range r.rows {
		if a.Slug == slug {
			out := a
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(_ context.Context, f models.ArticleFilter) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}

	var out []models.Article
	q := strings.ToLower(f.Query)
	for _, a := range r.rows {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Tag != "" && !a.HasTag(f.Tag) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Title), q) &&
			!strings.Contains(strings.ToLower(a.Excerpt), q) {
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		if f.OrderBy == models.OrderPublishedDesc {
			return out[i].PublishedAt.After(*out[j].PublishedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// staticGate returns a fixed identity.
type staticGate struct {
	id Identity
	ok bool
}

func (g staticGate) Identity(context.Context) (Identity, bool) { return g.id, g.ok }

var (
	editorGate    = staticGate{id: Identity{UserID: uuid.New(), Email: "editor@jowamcoffee.com", CanMutate: true}, ok: true}
	viewerGate    = staticGate{id: Identity{UserID: uuid.New(), Email: "viewer@jowamcoffee.com"}, ok: true}
	anonymousGate = staticGate{}
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
