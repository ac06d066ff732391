package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jowam/internal/articles"
	"jowam/internal/middleware"
	"jowam/internal/models"
)

func adminRouter(a *Admin) http.Handler {
	r := chi.NewRouter()
	r.Get("/dashboard", a.Dashboard)
	r.Get("/slug", a.Slug)
	r.Get("/articles", a.ListArticles)
	r.Post("/articles", a.CreateArticle)
	r.Get("/articles/{id}", a.GetArticle)
	r.Patch("/articles/{id}", a.UpdateArticle)
	r.Delete("/articles/{id}", a.DeleteArticle)
	r.Post("/articles/{id}/toggle-status", a.ToggleStatus)
	r.Post("/uploads", a.UploadCover)
	r.Get("/users", a.ListUsers)
	r.Post("/users", a.CreateUser)
	r.Post("/users/{id}/reset-2fa", a.ResetTwoFA)
	return r
}

type adminFixture struct {
	repo    *memRepo
	users   *fakeUsers
	covers  *fakeCovers
	handler http.Handler
}

func newAdminFixture(seed ...models.Article) *adminFixture {
	f := &adminFixture{repo: newMemRepo(seed...), users: newFakeUsers(), covers: &fakeCovers{}}
	manager := articles.NewManager(f.repo, middleware.SessionGate{})
	f.handler = adminRouter(NewAdmin(manager, f.users, f.covers, nil))
	return f
}

func (f *adminFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func validInput() map[string]any {
	return map[string]any{
		"title":    "Kenya's Coffee: AA Grade!",
		"slug":     "kenyas-coffee-aa-grade",
		"excerpt":  "What AA means.",
		"content":  "## Screen 18\n\nLarge beans.",
		"category": "quality",
		"tags":     []string{"grading"},
		"author":   "Jowam Team",
		"status":   "published",
	}
}

func TestCreateArticle(t *testing.T) {
	f := newAdminFixture()

	rr := f.do(withSession(jsonRequest(t, http.MethodPost, "/articles", validInput()), models.RoleEditor, true))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	got := decodeBody[models.Article](t, rr)
	assert.Equal(t, "kenyas-coffee-aa-grade", got.Slug)
	assert.Equal(t, models.ArticleStatusPublished, got.Status)
	assert.NotNil(t, got.PublishedAt)
}

func TestCreateArticleErrorMapping(t *testing.T) {
	existing := publishedArticle("Taken", "kenyas-coffee-aa-grade", time.Now())

	tests := []struct {
		name   string
		role   models.Role
		twoFA  bool
		mutate func(map[string]any)
		status int
		field  string
	}{
		{"viewer is forbidden", models.RoleViewer, true, nil, http.StatusForbidden, ""},
		{"2FA pending is forbidden", models.RoleAdmin, false, nil, http.StatusForbidden, ""},
		{"missing title", models.RoleEditor, true, func(m map[string]any) { m["title"] = "  " }, http.StatusUnprocessableEntity, "title"},
		{"bad category", models.RoleEditor, true, func(m map[string]any) { m["category"] = "gossip" }, http.StatusUnprocessableEntity, "category"},
		{"duplicate slug", models.RoleEditor, true, nil, http.StatusConflict, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f *adminFixture
			if tt.status == http.StatusConflict {
				f = newAdminFixture(existing)
			} else {
				f = newAdminFixture()
			}
			in := validInput()
			if tt.mutate != nil {
				tt.mutate(in)
			}
			rr := f.do(withSession(jsonRequest(t, http.MethodPost, "/articles", in), tt.role, tt.twoFA))

			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decodeBody[errorBody](t, rr)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestCreateArticleRejectsUnknownFields(t *testing.T) {
	f := newAdminFixture()
	in := validInput()
	in["views"] = 10
	rr := f.do(withSession(jsonRequest(t, http.MethodPost, "/articles", in), models.RoleEditor, true))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStoreUnavailableMapsTo503(t *testing.T) {
	f := newAdminFixture()
	f.repo.failAll = errConnRefused

	rr := f.do(withSession(httptest.NewRequest(http.MethodGet, "/articles", nil), models.RoleViewer, true))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "5432", "store details must not leak")
}

func TestListArticlesIncludesDrafts(t *testing.T) {
	now := time.Now()
	f := newAdminFixture(
		publishedArticle("Pub", "pub", now.Add(-time.Hour)),
		draftArticle("Draft", "draft", now),
	)

	rr := f.do(withSession(httptest.NewRequest(http.MethodGet, "/articles", nil), models.RoleViewer, true))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[struct{ Articles []models.Article }](t, rr)
	require.Len(t, body.Articles, 2)
	assert.Equal(t, "draft", body.Articles[0].Slug, "newest created first")

	rr = f.do(withSession(httptest.NewRequest(http.MethodGet, "/articles?status=draft", nil), models.RoleViewer, true))
	body = decodeBody[struct{ Articles []models.Article }](t, rr)
	require.Len(t, body.Articles, 1)

	rr = f.do(withSession(httptest.NewRequest(http.MethodGet, "/articles?status=archived", nil), models.RoleViewer, true))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestGetArticle(t *testing.T) {
	d := draftArticle("Draft", "draft", time.Now())
	f := newAdminFixture(d)

	rr := f.do(withSession(httptest.NewRequest(http.MethodGet, "/articles/"+d.ID.String(), nil), models.RoleViewer, true))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(withSession(httptest.NewRequest(http.MethodGet, "/articles/not-a-uuid", nil), models.RoleViewer, true))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(httptest.NewRequest(http.MethodGet, "/articles/"+d.ID.String(), nil))
	assert.Equal(t, http.StatusForbidden, rr.Code, "anonymous")
}

func TestUpdateArticle(t *testing.T) {
	d := draftArticle("Draft", "draft", time.Now())
	f := newAdminFixture(d)

	rr := f.do(withSession(jsonRequest(t, http.MethodPatch, "/articles/"+d.ID.String(),
		map[string]any{"title": "Renamed", "status": "published"}), models.RoleEditor, true))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := decodeBody[models.Article](t, rr)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "draft", got.Slug, "slug does not follow the title")
	assert.NotNil(t, got.PublishedAt)

	rr = f.do(withSession(jsonRequest(t, http.MethodPatch, "/articles/"+d.ID.String(),
		map[string]any{"slug": "   "}), models.RoleEditor, true))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUpdateArticleChecksRoleBeforeExistence(t *testing.T) {
	f := newAdminFixture()

	rr := f.do(withSession(jsonRequest(t, http.MethodPatch, "/articles/"+uuid.NewString(),
		map[string]any{"title": "Renamed"}), models.RoleViewer, true))
	assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	rr = f.do(withSession(jsonRequest(t, http.MethodPatch, "/articles/"+uuid.NewString(),
		map[string]any{"title": "Renamed"}), models.RoleEditor, true))
	assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
}

func TestToggleStatus(t *testing.T) {
	d := draftArticle("Draft", "draft", time.Now())
	f := newAdminFixture(d)

	rr := f.do(withSession(httptest.NewRequest(http.MethodPost, "/articles/"+d.ID.String()+"/toggle-status", nil), models.RoleAdmin, true))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.ArticleStatusPublished, decodeBody[models.Article](t, rr).Status)

	rr = f.do(withSession(httptest.NewRequest(http.MethodPost, "/articles/"+d.ID.String()+"/toggle-status", nil), models.RoleAdmin, true))
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[models.Article](t, rr)
	assert.Equal(t, models.ArticleStatusDraft, got.Status)
	assert.NotNil(t, got.PublishedAt, "unpublishing keeps published_at")
}

func TestDeleteArticleRemovesOwnCover(t *testing.T) {
	d := publishedArticle("Pub", "pub", time.Now())
	cover := "https://cdn.example/covers/old.jpg"
	d.CoverImage = &cover
	f := newAdminFixture(d)

	rr := f.do(withSession(httptest.NewRequest(http.MethodDelete, "/articles/"+d.ID.String(), nil), models.RoleEditor, true))
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{cover}, f.covers.deleted)

	rr = f.do(withSession(httptest.NewRequest(http.MethodDelete, "/articles/"+d.ID.String(), nil), models.RoleEditor, true))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDashboard(t *testing.T) {
	now := time.Now()
	f := newAdminFixture(
		publishedArticle("A", "a", now),
		draftArticle("B", "b", now.Add(-time.Minute)),
	)
	rr := f.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), models.RoleViewer, true))
	require.Equal(t, http.StatusOK, rr.Code)

	stats := decodeBody[articles.Stats](t, rr)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Published)
	assert.Equal(t, 1, stats.Drafts)
}

func TestSlugPreview(t *testing.T) {
	f := newAdminFixture()
	rr := f.do(httptest.NewRequest(http.MethodGet, "/slug?title=Kenya%27s+Coffee%3A+AA+Grade%21", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "kenyas-coffee-aa-grade", decodeBody[map[string]string](t, rr)["slug"])
}

func TestCreateUser(t *testing.T) {
	f := newAdminFixture()
	req := func(body map[string]any) *httptest.ResponseRecorder {
		return f.do(withSession(jsonRequest(t, http.MethodPost, "/users", body), models.RoleAdmin, true))
	}

	rr := req(map[string]any{"email": " New@Jowam.com ", "password": "correct-horse-battery", "display_name": "New", "role": "editor"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	u := decodeBody[models.User](t, rr)
	assert.Equal(t, "new@jowam.com", u.Email)
	assert.NotContains(t, rr.Body.String(), "correct-horse", "password must not be echoed")

	rr = req(map[string]any{"email": "new@jowam.com", "password": "correct-horse-battery", "display_name": "Dup", "role": "editor"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = req(map[string]any{"email": "x@jowam.com", "password": "short", "display_name": "X", "role": "editor"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "password", decodeBody[errorBody](t, rr).Field)

	rr = req(map[string]any{"email": "y@jowam.com", "password": "long-enough-pass", "display_name": "Y", "role": "owner"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "role", decodeBody[errorBody](t, rr).Field)
}

func TestResetTwoFA(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	u := &models.User{Email: "e@jowam.com", Role: models.RoleEditor, TOTPSecret: &secret, TOTPEnabled: true}
	f := newAdminFixture()
	created, _ := f.users.Create(t.Context(), u.Email, "pw", "E", u.Role)
	f.users.SetTOTPSecret(t.Context(), created.ID, secret)
	f.users.EnableTOTP(t.Context(), created.ID)

	rr := f.do(withSession(httptest.NewRequest(http.MethodPost, "/users/"+created.ID.String()+"/reset-2fa", nil), models.RoleAdmin, true))
	require.Equal(t, http.StatusNoContent, rr.Code)

	after, _ := f.users.FindByID(t.Context(), created.ID)
	assert.False(t, after.TOTPEnabled)
	assert.Nil(t, after.TOTPSecret)

	rr = f.do(withSession(httptest.NewRequest(http.MethodPost, "/users/00000000-0000-0000-0000-000000000000/reset-2fa", nil), models.RoleAdmin, true))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
