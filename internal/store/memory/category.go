package memory

import (
	"context"
	"sync"
	"time"

	"reviewblog/internal/models"
	"reviewblog/internal/store"
)

// CategoryMemoryStorage keeps categories in insertion order plus a
// parent -> child ids index so children never need a full scan.
type CategoryMemoryStorage struct {
	mu         sync.RWMutex
	categories map[int64]*models.Category
	byName     map[string]int64
	children   map[int64][]int64
	order      []int64
	nextID     int64
}

func NewCategoryMemoryStorage() *CategoryMemoryStorage {
	return &CategoryMemoryStorage{
		categories: make(map[int64]*models.Category),
		byName:     make(map[string]int64),
		children:   make(map[int64][]int64),
		nextID:     1,
	}
}

func (s *CategoryMemoryStorage) FindByID(_ context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *CategoryMemoryStorage) FindByName(_ context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, nil
	}
	cp := *s.categories[id]
	return &cp, nil
}

func (s *CategoryMemoryStorage) FindAll(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Category, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, *s.categories[id])
	}
	return items, nil
}

func (s *CategoryMemoryStorage) FindChildren(_ context.Context, parentID int64) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.children[parentID]
	items := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		items = append(items, *s.categories[id])
	}
	models.SortByName(items)
	return items, nil
}

func (s *CategoryMemoryStorage) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[c.Name]; exists {
		return nil, store.ErrDuplicate
	}

	created := &models.Category{
		ID:        s.nextID,
		Name:      c.Name,
		CreatedAt: time.Now(),
	}
	if c.ParentID != nil {
		parent := *c.ParentID
		created.ParentID = &parent
		s.children[parent] = append(s.children[parent], created.ID)
	}
	s.categories[created.ID] = created
	s.byName[created.Name] = created.ID
	s.order = append(s.order, created.ID)
	s.nextID++

	cp := *created
	return &cp, nil
}

// name returns the name of a category, or "" if unknown.
func (s *CategoryMemoryStorage) name(id int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.categories[id]; ok {
		return c.Name
	}
	return ""
}

var _ store.CategoryRepository = (*CategoryMemoryStorage)(nil)
