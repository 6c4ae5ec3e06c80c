// Package view turns domain objects into the read-only projections the
// templates and JSON API render, and pages the article list.
package view

import (
	"context"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reviewblog/internal/models"
	"reviewblog/internal/service"
)

// Defaults applied by ParseHomeQuery.
const (
	DefaultPage = 1
	DefaultSize = 10
)

// HomeQuery holds the parsed /home query string.
type HomeQuery struct {
	Page       int
	Size       int
	CategoryID *int64
	Nickname   string
}

// ParseHomeQuery reads page, size, categoryId and nickname. Missing,
// non-numeric or non-positive page and size fall back to the defaults; an
// unparsable categoryId is ignored.
func ParseHomeQuery(q url.Values) HomeQuery {
	hq := HomeQuery{
		Page:     positiveOr(q.Get("page"), DefaultPage),
		Size:     positiveOr(q.Get("size"), DefaultSize),
		Nickname: strings.TrimSpace(q.Get("nickname")),
	}
	if id, err := strconv.ParseInt(q.Get("categoryId"), 10, 64); err == nil {
		hq.CategoryID = &id
	}
	return hq
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// ArticleResponse is an article as shown in lists and the detail view.
type ArticleResponse struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	HTML         template.HTML `json:"-"`
	Nickname     string        `json:"nickname"`
	AuthorID     int64         `json:"authorId"`
	CategoryID   *int64        `json:"categoryId,omitempty"`
	CategoryName string        `json:"category,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewArticleResponse maps an article. HTML is left empty; callers that
// show the body render it.
func NewArticleResponse(a models.Article) ArticleResponse {
	return ArticleResponse{
		ID:           a.ID,
		Title:        a.Title,
		Content:      a.Content,
		Nickname:     a.AuthorNickname,
		AuthorID:     a.AuthorID,
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// Edited reports whether the article changed after it was created.
func (a ArticleResponse) Edited() bool {
	return a.UpdatedAt.After(a.CreatedAt)
}

// CategoryResponse is a category tree node.
type CategoryResponse struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	ParentID *int64             `json:"parentId,omitempty"`
	Depth    int                `json:"-"`
	Children []CategoryResponse `json:"children"`
}

// NewCategoryResponse maps a single category without children.
func NewCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, ParentID: c.ParentID, Children: []CategoryResponse{}}
}

// NewCategoryTree maps a category forest.
func NewCategoryTree(nodes []service.CategoryNode) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(nodes))
	for _, n := range nodes {
		r := NewCategoryResponse(n.Category)
		r.Depth = n.Depth
		r.Children = NewCategoryTree(n.Children)
		out = append(out, r)
	}
	return out
}

// LoginUser identifies the signed-in user on rendered pages.
type LoginUser struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// HomePage is everything the article list template needs.
type HomePage struct {
	Articles   []ArticleResponse
	Page       int
	Size       int
	Total      int
	TotalPages int
	CategoryID *int64
	Nickname   string
	LoginUser  *LoginUser
	Categories []CategoryResponse
}

// HasPrev reports whether a previous page link should be shown.
func (p *HomePage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page link should be shown.
func (p *HomePage) HasNext() bool { return p.Page < p.TotalPages }

// PageNumbers lists 1..TotalPages for the pager.
func (p *HomePage) PageNumbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// PageURL links to page n of the same listing, keeping size and filters.
func (p *HomePage) PageURL(n int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(n))
	q.Set("size", strconv.Itoa(p.Size))
	if p.CategoryID != nil {
		q.Set("categoryId", strconv.FormatInt(*p.CategoryID, 10))
	}
	if p.Nickname != "" {
		q.Set("nickname", p.Nickname)
	}
	return "/home?" + q.Encode()
}

// FlattenTree lists a category forest depth-first, keeping Depth, for
// indented dropdowns.
func FlattenTree(nodes []CategoryResponse) []CategoryResponse {
	var out []CategoryResponse
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, FlattenTree(n.Children)...)
	}
	return out
}

// Reverse returns a new slice in reverse order.
func Reverse[T any](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

// Paginate returns items[(page-1)*size : min(page*size, len)]. A start at
// or past the end yields an empty page, never an error.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	// Compare page numbers before multiplying so huge values cannot overflow.
	if page-1 >= TotalPages(len(items), size) {
		return []T{}
	}
	start := (page - 1) * size
	return items[start : start+min(size, len(items)-start)]
}

// TotalPages is (total-1)/size+1, and 0 for an empty list.
func TotalPages(total, size int) int {
	if total == 0 || size < 1 {
		return 0
	}
	return (total-1)/size + 1
}

// ArticleSource is the part of the article service the home page reads.
type ArticleSource interface {
	GetArticles(ctx context.Context) ([]models.Article, error)
	GetArticlesByCategory(ctx context.Context, categoryID int64) ([]models.Article, error)
	GetArticleByUser(ctx context.Context, nickname string) ([]models.Article, error)
}

// SelectArticles picks the base article set for a query, oldest first.
// With both nickname and category, the author's articles are narrowed to
// that category and uncategorised ones drop out.
func SelectArticles(ctx context.Context, src ArticleSource, q HomeQuery) ([]models.Article, error) {
	switch {
	case q.Nickname != "":
		items, err := src.GetArticleByUser(ctx, q.Nickname)
		if err != nil || q.CategoryID == nil {
			return items, err
		}
		var filtered []models.Article
		for _, a := range items {
			if a.InCategory(*q.CategoryID) {
				filtered = append(filtered, a)
			}
		}
		return filtered, nil
	case q.CategoryID != nil:
		return src.GetArticlesByCategory(ctx, *q.CategoryID)
	default:
		return src.GetArticles(ctx)
	}
}

// BuildHome selects, reverses and pages the article list for q.
func BuildHome(ctx context.Context, src ArticleSource, q HomeQuery, login *LoginUser, tree []CategoryResponse) (*HomePage, error) {
	items, err := SelectArticles(ctx, src, q)
	if err != nil {
		return nil, err
	}

	responses := make([]ArticleResponse, 0, len(items))
	for _, a := range items {
		responses = append(responses, NewArticleResponse(a))
	}
	newestFirst := Reverse(responses)

	return &HomePage{
		Articles:   Paginate(newestFirst, q.Page, q.Size),
		Page:       q.Page,
		Size:       q.Size,
		Total:      len(newestFirst),
		TotalPages: TotalPages(len(newestFirst), q.Size),
		CategoryID: q.CategoryID,
		Nickname:   q.Nickname,
		LoginUser:  login,
		Categories: tree,
	}, nil
}
