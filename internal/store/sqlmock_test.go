package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"reviewblog/internal/models"
)

// These tests exercise the SQL layer without a live database.

func newMock(t *testing.T) (*sqlmockDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations: %v", err)
		}
		db.Close()
	})
	return &sqlmockDB{
		users:      NewUserStore(db),
		categories: NewCategoryStore(db),
		articles:   NewArticleStore(db),
	}, mock
}

type sqlmockDB struct {
	users      *UserStore
	categories *CategoryStore
	articles   *ArticleStore
}

var (
	categoryCols = []string{"id", "name", "parent_id", "created_at"}
	articleCols  = []string{"id", "title", "content", "author_id", "category_id", "created_at", "updated_at", "nickname", "name"}
)

func TestCategoryFindByNameNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE name = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(categoryCols))

	c, err := s.categories.FindByName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil, got %+v", c)
	}
}

func TestCategoryCreateMapsUniqueViolation(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs("go", nil).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	_, err := s.categories.Create(context.Background(), &models.Category{Name: "go"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("got %v, want ErrDuplicate", err)
	}
}

func TestCategoryCreateWrapsOtherErrors(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WillReturnError(errors.New("connection reset"))

	_, err := s.categories.Create(context.Background(), &models.Category{Name: "go"})
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Errorf("got %v, want wrapped non-duplicate error", err)
	}
}

func TestCategoryFindChildrenSortsByName(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE parent_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(categoryCols).
			AddRow(int64(2), "zeta", int64(1), now).
			AddRow(int64(3), "Beta", int64(1), now).
			AddRow(int64(4), "alpha", int64(1), now))

	children, err := s.categories.FindChildren(context.Background(), 1)
	if err != nil {
		t.Fatalf("FindChildren: %v", err)
	}
	var got []string
	for _, c := range children {
		got = append(got, c.Name)
	}
	want := []string{"Beta", "alpha", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestArticleFindAllScansProjections(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.id")).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(int64(1), "One", "body", int64(7), int64(3), now, now, "alice", "go").
			AddRow(int64(2), "Two", "body", int64(7), nil, now, now, "alice", ""))

	items, err := s.articles.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len: got %d, want 2", len(items))
	}
	if items[0].CategoryID == nil || *items[0].CategoryID != 3 || items[0].CategoryName != "go" {
		t.Errorf("first article category: %+v", items[0])
	}
	if items[1].CategoryID != nil {
		t.Errorf("second article should be uncategorised: %+v", items[1])
	}
	if items[0].AuthorNickname != "alice" {
		t.Errorf("nickname: got %q", items[0].AuthorNickname)
	}
}

func TestArticleCreateReloadsRow(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs("Title", "Body", int64(7), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(int64(11), "Title", "Body", int64(7), nil, now, now, "alice", ""))

	a, err := s.articles.Create(context.Background(), &models.Article{Title: "Title", Content: "Body", AuthorID: 7})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID != 11 || a.AuthorNickname != "alice" {
		t.Errorf("got %+v", a)
	}
}

func TestArticleUpdateAndDelete(t *testing.T) {
	s, mock := newMock(t)
	cat := int64(3)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET title = $1")).
		WithArgs("T", "C", &cat, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if err := s.articles.Update(ctx, &models.Article{ID: 5, Title: "T", Content: "C", CategoryID: &cat}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.articles.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestUserFindByIDNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := s.users.FindByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %+v", u)
	}
}
