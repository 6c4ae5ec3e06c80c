// handler_test.go provides shared test infrastructure for handler tests.
// Everything runs against the in-memory repositories and session backend,
// so no database or Valkey is needed.
package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"reviewblog/internal/middleware"
	"reviewblog/internal/models"
	"reviewblog/internal/render"
	"reviewblog/internal/service"
	"reviewblog/internal/session"
	"reviewblog/internal/store/memory"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	store      *memory.Storage
	users      *service.UserService
	articles   *service.ArticleService
	categories *service.CategoryService
	sessions   *session.Store
	router     http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rn, err := render.New()
	require.NoError(t, err)

	s := memory.New()
	env := &testEnv{
		store:      s,
		users:      service.NewUserService(s.Users),
		articles:   service.NewArticleService(s.Articles, s.Categories, s.Users),
		categories: service.NewCategoryService(s.Categories),
		sessions:   session.NewStore(session.NewMemoryBackend(), false),
	}

	views := NewViews(rn, env.articles, env.categories)
	api := NewAPI(env.articles, env.categories)
	auth := NewAuth(rn, env.sessions, env.users)

	// Mirrors the production route table without CSRF, which has its own tests.
	r := chi.NewRouter()
	r.Use(middleware.LoadSession(env.sessions))

	r.Get("/", views.Root)
	r.Get("/home", views.Home)
	r.Get("/login", auth.LoginPage)
	r.Post("/login", auth.LoginSubmit)
	r.Get("/login/2fa", auth.TwoFAVerifyPage)
	r.Post("/login/2fa", auth.TwoFAVerifySubmit)
	r.Post("/logout", auth.Logout)
	r.Get("/signup", auth.SignupPage)
	r.Post("/user", auth.SignupSubmit)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.Require2FA)
		r.Get("/article/{id}", views.ViewArticle)
		r.Get("/new-article", views.NewArticle)
		r.Get("/account/2fa", auth.TwoFASetupPage)
		r.Post("/account/2fa", auth.TwoFASetupSubmit)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuthAPI)
		r.Get("/category", api.ListCategories)
		r.Post("/category", api.CreateCategory)
		r.Post("/article", api.CreateArticle)
		r.Put("/article/{id}", api.UpdateArticle)
		r.Delete("/article/{id}", api.DeleteArticle)
	})

	env.router = r
	return env
}

// signup registers a user with password "password123".
func (e *testEnv) signup(t *testing.T, nickname string) *models.User {
	t.Helper()
	u, err := e.users.Signup(context.Background(), nickname+"@example.com", nickname, "password123")
	require.NoError(t, err)
	return u
}

// sessionCookie creates a session for u and returns its cookie.
func (e *testEnv) sessionCookie(t *testing.T, u *models.User, twoFADone bool) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	_, err := e.sessions.Create(context.Background(), rr, &session.Data{
		UserID:    u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		TwoFADone: twoFADone,
	})
	require.NoError(t, err)
	return findCookie(t, rr, session.CookieName)
}

// login signs u in with a completed session.
func (e *testEnv) login(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()
	return e.sessionCookie(t, u, true)
}

// category creates a category directly through the service.
func (e *testEnv) category(t *testing.T, name string, parentID *int64) *models.Category {
	t.Helper()
	c, err := e.categories.CreateCategory(context.Background(), name, parentID)
	require.NoError(t, err)
	return c
}

// article creates an article directly through the service.
func (e *testEnv) article(t *testing.T, author *models.User, title, content, category string) *models.Article {
	t.Helper()
	a, err := e.articles.CreateArticle(context.Background(), service.CreateArticleRequest{
		Title: title, Content: content, Category: category,
	}, author.ID)
	require.NoError(t, err)
	return a
}

// do sends a request through the test router.
func (e *testEnv) do(method, target string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, target, nil, "", cookies...)
}

func (e *testEnv) postForm(target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookies...)
}

func (e *testEnv) sendJSON(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(method, target, strings.NewReader(body), "application/json", cookies...)
}

// findCookie returns the named cookie set on the response.
func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
