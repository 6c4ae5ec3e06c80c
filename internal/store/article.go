// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"reviewblog/internal/models"
)

// ArticleStore handles article database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// articleSelect joins the author nickname and category name so list views
// need no extra round trips. The FROM clause is aliased so callers can
// append WHERE conditions on a.*.
const articleSelect = `
	SELECT a.id, a.title, a.content, a.author_id, a.category_id,
	       a.created_at, a.updated_at, u.nickname, COALESCE(c.name, '')
	FROM articles a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id`

// scanArticle scans a row into an Article struct.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.CategoryID,
		&a.CreatedAt, &a.UpdatedAt, &a.AuthorNickname, &a.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// list runs a multi-row article query.
func (s *ArticleStore) list(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// FindByID retrieves an article by ID. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindAll returns every article in insertion order.
func (s *ArticleStore) FindAll(ctx context.Context) ([]models.Article, error) {
	return s.list(ctx, articleSelect+` ORDER BY a.id`)
}

// FindByCategory returns the articles filed directly under a category.
func (s *ArticleStore) FindByCategory(ctx context.Context, categoryID int64) ([]models.Article, error) {
	return s.list(ctx, articleSelect+` WHERE a.category_id = $1 ORDER BY a.id`, categoryID)
}

// FindByAuthor returns the articles written by a user.
func (s *ArticleStore) FindByAuthor(ctx context.Context, authorID int64) ([]models.Article, error) {
	return s.list(ctx, articleSelect+` WHERE a.author_id = $1 ORDER BY a.id`, authorID)
}

// Create inserts a new article and returns it with the projections filled.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, content, author_id, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		a.Title, a.Content, a.AuthorID, a.CategoryID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update saves title, content and category. The author never changes.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE articles SET title = $1, content = $2, category_id = $3, updated_at = NOW()
		WHERE id = $4`,
		a.Title, a.Content, a.CategoryID, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes an article by ID.
func (s *ArticleStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ UserRepository     = (*UserStore)(nil)
	_ CategoryRepository = (*CategoryStore)(nil)
	_ ArticleRepository  = (*ArticleStore)(nil)
)
