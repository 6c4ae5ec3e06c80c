package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Default development account created by Seed.
const (
	SeedEmail    = "admin@reviewblog.local"
	SeedNickname = "admin"
	SeedPassword = "admin1234"
)

// Seed populates an empty database with a default user, a small category
// tree and a welcome article. It does nothing once any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID, generalID, programmingID, goID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO users (email, nickname, password_hash) VALUES ($1, $2, $3) RETURNING id
	`, SeedEmail, SeedNickname, string(hash)).Scan(&userID); err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	insertCategory := `INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING id`
	if err := tx.QueryRowContext(ctx, insertCategory, "General", nil).Scan(&generalID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRowContext(ctx, insertCategory, "Programming", nil).Scan(&programmingID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRowContext(ctx, insertCategory, "Go", programmingID).Scan(&goID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO articles (title, content, author_id, category_id) VALUES ($1, $2, $3, $4)
	`, WelcomeTitle, WelcomeContent, userID, generalID); err != nil {
		return fmt.Errorf("seed insert article: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default user",
		"email", SeedEmail,
		"password", SeedPassword,
	)
	return nil
}

// Welcome article created by Seed.
const (
	WelcomeTitle   = "Welcome to ReviewBlog"
	WelcomeContent = "This is the first article. **Markdown** is supported.\n\n" +
		"Sign in, pick a category and start writing."
)
