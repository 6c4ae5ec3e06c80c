package memory

import "reviewblog/internal/store"

// Storage bundles the three in-memory repositories wired together.
type Storage struct {
	Users      *UserMemoryStorage
	Categories *CategoryMemoryStorage
	Articles   *ArticleMemoryStorage
}

func New() *Storage {
	users := NewUserMemoryStorage()
	categories := NewCategoryMemoryStorage()
	return &Storage{
		Users:      users,
		Categories: categories,
		Articles:   NewArticleMemoryStorage(users, categories),
	}
}

var _ store.UserRepository = (*UserMemoryStorage)(nil)
