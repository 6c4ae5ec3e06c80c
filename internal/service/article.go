package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

// Field limits enforced on article writes. Empty values are allowed.
const (
	MaxTitleLen   = 300
	MaxContentLen = 100_000
)

// CreateArticleRequest is the payload for a new article. Category is a
// category name; empty means uncategorised.
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// UpdateArticleRequest replaces title and content. A nil Category keeps
// the current one; an empty string clears it.
type UpdateArticleRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category"`
}

// ArticleService enforces article ownership and category resolution.
type ArticleService struct {
	articles   store.ArticleRepository
	categories store.CategoryRepository
	users      store.UserRepository
}

func NewArticleService(articles store.ArticleRepository, categories store.CategoryRepository, users store.UserRepository) *ArticleService {
	return &ArticleService{articles: articles, categories: categories, users: users}
}

func validateArticle(title, content string) error {
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("title longer than %d characters: %w", MaxTitleLen, ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return fmt.Errorf("content longer than %d characters: %w", MaxContentLen, ErrInvalidInput)
	}
	return nil
}

// resolveCategory maps a category name to its id. "" resolves to nil.
func (s *ArticleService) resolveCategory(ctx context.Context, name string) (*models.Category, error) {
	if name == "" {
		return nil, nil
	}
	c, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return c, nil
}

// CreateArticle stores a new article owned by authorID.
func (s *ArticleService) CreateArticle(ctx context.Context, req CreateArticleRequest, authorID int64) (*models.Article, error) {
	if err := validateArticle(req.Title, req.Content); err != nil {
		return nil, err
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("find author: %w", err)
	}
	if author == nil {
		return nil, fmt.Errorf("user %d: %w", authorID, ErrNotFound)
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	a := &models.Article{Title: req.Title, Content: req.Content, AuthorID: author.ID}
	if category != nil {
		a.CategoryID = &category.ID
	}
	created, err := s.articles.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return created, nil
}

// GetArticle returns one article by id.
func (s *ArticleService) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return a, nil
}

// GetArticles returns every article, oldest first.
func (s *ArticleService) GetArticles(ctx context.Context) ([]models.Article, error) {
	items, err := s.articles.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return items, nil
}

// GetArticlesByCategory returns the articles in one category, oldest first.
func (s *ArticleService) GetArticlesByCategory(ctx context.Context, categoryID int64) ([]models.Article, error) {
	c, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, ErrNotFound)
	}
	items, err := s.articles.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list articles by category: %w", err)
	}
	return items, nil
}

// GetArticleByUser returns the articles written by nickname, oldest first.
func (s *ArticleService) GetArticleByUser(ctx context.Context, nickname string) ([]models.Article, error) {
	u, err := s.users.FindByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %q: %w", nickname, ErrNotFound)
	}
	items, err := s.articles.FindByAuthor(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list articles by user: %w", err)
	}
	return items, nil
}

// authored loads an article and checks requesterID wrote it.
func (s *ArticleService) authored(ctx context.Context, id, requesterID int64) (*models.Article, error) {
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsWrittenBy(requesterID) {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotAuthor)
	}
	return a, nil
}

// UpdateArticle replaces title and content, and the category when one is
// supplied. Only the author may update.
func (s *ArticleService) UpdateArticle(ctx context.Context, id int64, req UpdateArticleRequest, requesterID int64) (*models.Article, error) {
	a, err := s.authored(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if err := validateArticle(req.Title, req.Content); err != nil {
		return nil, err
	}

	if req.Category == nil {
		a.Update(req.Title, req.Content)
	} else {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			a.UpdateWithCategory(req.Title, req.Content, nil, "")
		} else {
			a.UpdateWithCategory(req.Title, req.Content, &category.ID, category.Name)
		}
	}

	if err := s.articles.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return a, nil
}

// DeleteArticle removes an article. Only the author may delete.
func (s *ArticleService) DeleteArticle(ctx context.Context, id, requesterID int64) error {
	if _, err := s.authored(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
