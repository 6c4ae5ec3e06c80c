package handlers

import (
	"context"
	"net/http"
	"strconv"

	"reviewblog/internal/markdown"
	"reviewblog/internal/middleware"
	"reviewblog/internal/render"
	"reviewblog/internal/service"
	"reviewblog/internal/view"
)

// NotWriterMessage is flashed when someone opens the editor for an
// article they did not write.
const NotWriterMessage = "401 ERROR, You're not writer."

// Views groups the server-rendered blog pages.
type Views struct {
	renderer   *render.Renderer
	articles   *service.ArticleService
	categories *service.CategoryService
}

// NewViews creates a new Views handler group.
func NewViews(renderer *render.Renderer, articles *service.ArticleService, categories *service.CategoryService) *Views {
	return &Views{
		renderer:   renderer,
		articles:   articles,
		categories: categories,
	}
}

// Root sends visitors to the article list.
func (v *Views) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// Home renders the paginated, newest-first article list.
func (v *Views) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := view.ParseHomeQuery(r.URL.Query())

	tree, err := v.tree(ctx)
	if err != nil {
		renderError(v.renderer, w, r, err)
		return
	}

	home, err := view.BuildHome(ctx, v.articles, q, loginUser(r), tree)
	if err != nil {
		renderError(v.renderer, w, r, err)
		return
	}

	v.renderer.Page(w, r, "home", &render.PageData{
		Title: "Home",
		Data:  map[string]any{"Home": home},
	})
}

// ViewArticle renders one article with its Markdown body.
func (v *Views) ViewArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	a, err := v.articles.GetArticle(r.Context(), id)
	if err != nil {
		renderError(v.renderer, w, r, err)
		return
	}

	resp := view.NewArticleResponse(*a)
	resp.HTML = markdown.Render(a.Content)

	isAuthor := false
	if sess := middleware.AuthenticatedFromCtx(r.Context()); sess != nil {
		isAuthor = a.IsWrittenBy(sess.UserID)
	}

	v.renderer.Page(w, r, "article", &render.PageData{
		Title: a.Title,
		Data:  map[string]any{"Article": &resp, "IsAuthor": isAuthor},
	})
}

// NewArticle renders the article editor. With ?id= it edits an existing
// article, which only its author may do; anyone else is sent back to the
// article with a flash message.
func (v *Views) NewArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var article *view.ArticleResponse
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		a, err := v.articles.GetArticle(ctx, id)
		if err != nil {
			renderError(v.renderer, w, r, err)
			return
		}

		sess := middleware.AuthenticatedFromCtx(ctx)
		if sess == nil || !a.IsWrittenBy(sess.UserID) {
			render.SetFlash(w, render.FlashError, NotWriterMessage)
			http.Redirect(w, r, "/article/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
			return
		}

		resp := view.NewArticleResponse(*a)
		article = &resp
	}

	tree, err := v.tree(ctx)
	if err != nil {
		renderError(v.renderer, w, r, err)
		return
	}

	title := "New article"
	if article != nil {
		title = "Edit article"
	}
	v.renderer.Page(w, r, "article_form", &render.PageData{
		Title: title,
		Data: map[string]any{
			"Article":     article,
			"Categories":  view.FlattenTree(tree),
			"MaxTitleLen": service.MaxTitleLen,
		},
	})
}

func (v *Views) tree(ctx context.Context) ([]view.CategoryResponse, error) {
	nodes, err := v.categories.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return view.NewCategoryTree(nodes), nil
}

// loginUser returns the signed-in user for page headers, or nil.
func loginUser(r *http.Request) *view.LoginUser {
	sess := middleware.AuthenticatedFromCtx(r.Context())
	if sess == nil {
		return nil
	}
	return &view.LoginUser{ID: sess.UserID, Nickname: sess.Nickname, Email: sess.Email}
}
