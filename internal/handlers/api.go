package handlers

import (
	"net/http"

	"reviewblog/internal/metrics"
	"reviewblog/internal/middleware"
	"reviewblog/internal/service"
	"reviewblog/internal/view"
)

// API groups the JSON endpoints used by the page scripts. All routes sit
// behind RequireAuthAPI, so a session is always present.
type API struct {
	articles   *service.ArticleService
	categories *service.CategoryService
}

// NewAPI creates a new API handler group.
func NewAPI(articles *service.ArticleService, categories *service.CategoryService) *API {
	return &API{articles: articles, categories: categories}
}

// createCategoryRequest is the body of POST /api/category.
type createCategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// CreateCategory adds a category, optionally under a parent.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCategoryName(req.Name); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	c, err := a.categories.CreateCategory(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.RecordCategoryCreated()
	writeJSON(w, http.StatusCreated, view.NewCategoryResponse(*c))
}

// ListCategories returns the category tree.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	nodes, err := a.categories.Tree(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewCategoryTree(nodes))
}

// CreateArticle publishes an article written by the session user.
func (a *API) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req service.CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateArticle(req.Title, req.Content); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	created, err := a.articles.CreateArticle(r.Context(), req, sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.RecordArticle(metrics.ArticleCreated)
	w.Header().Set("Location", "/article/"+itoa(created.ID))
	writeJSON(w, http.StatusCreated, view.NewArticleResponse(*created))
}

// UpdateArticle replaces an article's title, content and optionally its
// category. Only the author may do this.
func (a *API) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid article id"})
		return
	}

	var req service.UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateArticle(req.Title, req.Content); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	updated, err := a.articles.UpdateArticle(r.Context(), id, req, sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.RecordArticle(metrics.ArticleUpdated)
	writeJSON(w, http.StatusOK, view.NewArticleResponse(*updated))
}

// DeleteArticle removes an article. Only the author may do this.
func (a *API) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid article id"})
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if err := a.articles.DeleteArticle(r.Context(), id, sess.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	metrics.RecordArticle(metrics.ArticleDeleted)
	w.WriteHeader(http.StatusNoContent)
}
