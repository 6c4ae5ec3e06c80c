package store

import (
	"context"
	"testing"

	"reviewblog/internal/models"
)

func TestArticleStoreLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserStore(db)
	categories := NewCategoryStore(db)
	articles := NewArticleStore(db)

	email := "test-article@store-test.local"
	t.Cleanup(func() {
		cleanUsers(t, db, email)
		cleanCategories(t, db, "store-article-cat")
	})

	author, err := users.Create(ctx, &models.User{Email: email, Nickname: "store-article", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	cat, err := categories.Create(ctx, &models.Category{Name: "store-article-cat"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	first, err := articles.Create(ctx, &models.Article{Title: "First", Content: "one", AuthorID: author.ID, CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.AuthorNickname != "store-article" {
		t.Errorf("author nickname: got %q", first.AuthorNickname)
	}
	if first.CategoryName != "store-article-cat" {
		t.Errorf("category name: got %q", first.CategoryName)
	}

	second, err := articles.Create(ctx, &models.Article{Title: "Second", Content: "two", AuthorID: author.ID})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.CategoryName != "" || second.CategoryID != nil {
		t.Errorf("expected uncategorised article, got %v %q", second.CategoryID, second.CategoryName)
	}

	byAuthor, err := articles.FindByAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("FindByAuthor: %v", err)
	}
	if len(byAuthor) != 2 || byAuthor[0].ID != first.ID || byAuthor[1].ID != second.ID {
		t.Errorf("FindByAuthor order: got %+v", byAuthor)
	}

	byCat, err := articles.FindByCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("FindByCategory: %v", err)
	}
	if len(byCat) != 1 || byCat[0].ID != first.ID {
		t.Errorf("FindByCategory: got %+v", byCat)
	}

	first.Update("First (edited)", "one!")
	first.CategoryID = nil
	if err := articles.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := articles.FindByID(ctx, first.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID: %v, %v", got, err)
	}
	if got.Title != "First (edited)" || got.CategoryID != nil {
		t.Errorf("after update: got %+v", got)
	}

	if err := articles.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = articles.FindByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
