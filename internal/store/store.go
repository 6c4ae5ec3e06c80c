// Package store provides data access for users, categories and articles.
// The repository interfaces are implemented here over PostgreSQL and in
// the memory subpackage for tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"reviewblog/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// UserRepository persists users. Find methods return (nil, nil) when no
// user matches.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByNickname(ctx context.Context, nickname string) (*models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID int64, secret string) error
	EnableTOTP(ctx context.Context, userID int64) error
}

// CategoryRepository persists categories. Find methods return (nil, nil)
// when no category matches.
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	FindChildren(ctx context.Context, parentID int64) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

// ArticleRepository persists articles. List methods return articles in
// insertion (ascending id) order. FindByID returns (nil, nil) when absent.
type ArticleRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Article, error)
	FindAll(ctx context.Context) ([]models.Article, error)
	FindByCategory(ctx context.Context, categoryID int64) ([]models.Article, error)
	FindByAuthor(ctx context.Context, authorID int64) ([]models.Article, error)
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id int64) error
}

// isUniqueViolation reports whether err is a PostgreSQL unique violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
