package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"reviewblog/internal/models"
	"reviewblog/internal/store/memory"
)

type fixture struct {
	store      *memory.Storage
	categories *CategoryService
	articles   *ArticleService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	users := NewUserService(s.Users)
	users.hashCost = bcrypt.MinCost
	return &fixture{
		store:      s,
		categories: NewCategoryService(s.Categories),
		articles:   NewArticleService(s.Articles, s.Categories, s.Users),
		users:      users,
	}
}

func (f *fixture) user(t *testing.T, nickname string) *models.User {
	t.Helper()
	u, err := f.users.Signup(context.Background(), nickname+"@example.com", nickname, "password123")
	require.NoError(t, err)
	return u
}

func (f *fixture) category(t *testing.T, name string, parentID *int64) *models.Category {
	t.Helper()
	c, err := f.categories.CreateCategory(context.Background(), name, parentID)
	require.NoError(t, err)
	return c
}
