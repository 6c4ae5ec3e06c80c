package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewblog/internal/config"
	"reviewblog/internal/database"
	"reviewblog/internal/service"
)

func TestOpenBackendsMemory(t *testing.T) {
	b, err := openBackends(context.Background(), &config.Config{}, storageMemory)
	require.NoError(t, err)
	defer b.close()

	assert.NotNil(t, b.users)
	assert.NotNil(t, b.categories)
	assert.NotNil(t, b.articles)
	assert.NotNil(t, b.sessions)
}

func TestOpenBackendsUnknownMode(t *testing.T) {
	_, err := openBackends(context.Background(), &config.Config{}, "sqlite")
	assert.ErrorContains(t, err, `unknown storage mode "sqlite"`)
}

func TestSeedMemory(t *testing.T) {
	ctx := context.Background()
	b, err := openBackends(ctx, &config.Config{}, storageMemory)
	require.NoError(t, err)

	users := service.NewUserService(b.users)
	categories := service.NewCategoryService(b.categories)
	articles := service.NewArticleService(b.articles, b.categories, b.users)

	require.NoError(t, seedMemory(ctx, users, categories, articles))

	admin, err := users.Authenticate(ctx, database.SeedEmail, database.SeedPassword)
	require.NoError(t, err)
	assert.Equal(t, database.SeedNickname, admin.Nickname)

	tree, err := categories.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "General", tree[0].Name)
	assert.Equal(t, "Programming", tree[1].Name)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Go", tree[1].Children[0].Name)

	all, err := articles.GetArticles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, database.WelcomeTitle, all[0].Title)
	assert.Equal(t, "General", all[0].CategoryName)

	// A second seed collides with the existing account.
	assert.ErrorIs(t, seedMemory(ctx, users, categories, articles), service.ErrDuplicateName)
}

func TestNewLogger(t *testing.T) {
	dev := newLogger(&config.Config{Env: "development"})
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug), "debug enabled in development")

	prod := newLogger(&config.Config{Env: "production"})
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
}
