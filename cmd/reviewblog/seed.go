package main

import (
	"context"
	"fmt"
	"log/slog"

	"reviewblog/internal/database"
	"reviewblog/internal/service"
)

// seedMemory loads the development fixtures into empty in-memory storage,
// matching what database.Seed writes to PostgreSQL.
func seedMemory(ctx context.Context, users *service.UserService, categories *service.CategoryService, articles *service.ArticleService) error {
	admin, err := users.Signup(ctx, database.SeedEmail, database.SeedNickname, database.SeedPassword)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	if _, err := categories.CreateCategory(ctx, "General", nil); err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	programming, err := categories.CreateCategory(ctx, "Programming", nil)
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if _, err := categories.CreateCategory(ctx, "Go", &programming.ID); err != nil {
		return fmt.Errorf("seed category: %w", err)
	}

	if _, err := articles.CreateArticle(ctx, service.CreateArticleRequest{
		Title:    database.WelcomeTitle,
		Content:  database.WelcomeContent,
		Category: "General",
	}, admin.ID); err != nil {
		return fmt.Errorf("seed article: %w", err)
	}

	slog.Info("memory storage seeded", "email", database.SeedEmail, "password", database.SeedPassword)
	return nil
}
