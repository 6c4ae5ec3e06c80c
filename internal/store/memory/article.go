package memory

import (
	"context"
	"sync"
	"time"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

// ArticleMemoryStorage resolves author nicknames and category names
// through the sibling storages when articles are read.
type ArticleMemoryStorage struct {
	mu         sync.RWMutex
	articles   map[int64]*models.Article
	order      []int64
	nextID     int64
	users      *UserMemoryStorage
	categories *CategoryMemoryStorage
}

func NewArticleMemoryStorage(users *UserMemoryStorage, categories *CategoryMemoryStorage) *ArticleMemoryStorage {
	return &ArticleMemoryStorage{
		articles:   make(map[int64]*models.Article),
		nextID:     1,
		users:      users,
		categories: categories,
	}
}

// project returns a copy of a with the read-only projections filled.
func (s *ArticleMemoryStorage) project(a *models.Article) models.Article {
	cp := *a
	if a.CategoryID != nil {
		id := *a.CategoryID
		cp.CategoryID = &id
		cp.CategoryName = s.categories.name(id)
	}
	cp.AuthorNickname = s.users.nickname(a.AuthorID)
	return cp
}

func (s *ArticleMemoryStorage) FindByID(_ context.Context, id int64) (*models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	cp := s.project(a)
	return &cp, nil
}

func (s *ArticleMemoryStorage) filter(match func(*models.Article) bool) []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.Article
	for _, id := range s.order {
		a := s.articles[id]
		if match(a) {
			items = append(items, s.project(a))
		}
	}
	return items
}

func (s *ArticleMemoryStorage) FindAll(_ context.Context) ([]models.Article, error) {
	return s.filter(func(*models.Article) bool { return true }), nil
}

func (s *ArticleMemoryStorage) FindByCategory(_ context.Context, categoryID int64) ([]models.Article, error) {
	return s.filter(func(a *models.Article) bool { return a.InCategory(categoryID) }), nil
}

func (s *ArticleMemoryStorage) FindByAuthor(_ context.Context, authorID int64) ([]models.Article, error) {
	return s.filter(func(a *models.Article) bool { return a.IsWrittenBy(authorID) }), nil
}

func (s *ArticleMemoryStorage) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	created := &models.Article{
		ID:        s.nextID,
		Title:     a.Title,
		Content:   a.Content,
		AuthorID:  a.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.CategoryID != nil {
		id := *a.CategoryID
		created.CategoryID = &id
	}
	s.articles[created.ID] = created
	s.order = append(s.order, created.ID)
	s.nextID++

	cp := s.project(created)
	return &cp, nil
}

func (s *ArticleMemoryStorage) Update(_ context.Context, a *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.articles[a.ID]
	if !ok {
		return nil
	}
	existing.Title = a.Title
	existing.Content = a.Content
	existing.CategoryID = nil
	if a.CategoryID != nil {
		id := *a.CategoryID
		existing.CategoryID = &id
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (s *ArticleMemoryStorage) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return nil
	}
	delete(s.articles, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ store.ArticleRepository = (*ArticleMemoryStorage)(nil)
