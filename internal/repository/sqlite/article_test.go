package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

func newArticle(title, author string) *model.Article {
	return &model.Article{Title: title, Content: title + " body", Author: author}
}

// createTestArticle creates an article and fails the test if it errors.
func createTestArticle(t *testing.T, db *DB, title, author string) *model.Article {
	t.Helper()
	a := newArticle(title, author)
	if err := db.Articles().Create(context.Background(), a); err != nil {
		t.Fatalf("failed to create test article: %v", err)
	}
	return a
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestArticleCreate(t *testing.T) {
	db := newTestDB(t)

	a := newArticle("hello", "alice@example.com")
	if err := db.Articles().Create(context.Background(), a); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if a.ID == 0 {
		t.Error("Create() did not set article.ID")
	}
	if a.CreatedAt.IsZero() {
		t.Error("Create() did not set article.CreatedAt")
	}
}

func TestArticleCreate_IDsIncrease(t *testing.T) {
	db := newTestDB(t)

	first := createTestArticle(t, db, "one", "alice@example.com")
	second := createTestArticle(t, db, "two", "alice@example.com")

	if second.ID <= first.ID {
		t.Errorf("second ID = %d, want > %d", second.ID, first.ID)
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestArticleGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestArticle(t, db, "hello", "alice@example.com")

	got, err := db.Articles().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Title != created.Title || got.Content != created.Content || got.Author != created.Author {
		t.Errorf("GetByID() = %+v, want %+v", got, created)
	}
	// Equal, not ==: the stored time comes back with a different *Location.
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestArticleGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Articles().GetByID(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestArticleList_Empty(t *testing.T) {
	db := newTestDB(t)

	articles, err := db.Articles().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if articles == nil {
		t.Error("List() returned nil, want empty slice")
	}
	if len(articles) != 0 {
		t.Errorf("List() returned %d articles, want 0", len(articles))
	}
}

func TestArticleList_InsertionOrder(t *testing.T) {
	db := newTestDB(t)
	createTestArticle(t, db, "first", "alice@example.com")
	createTestArticle(t, db, "second", "bob@example.com")
	createTestArticle(t, db, "third", "alice@example.com")

	articles, err := db.Articles().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(articles) != len(want) {
		t.Fatalf("List() returned %d articles, want %d", len(articles), len(want))
	}
	for i, title := range want {
		if articles[i].Title != title {
			t.Errorf("articles[%d].Title = %q, want %q", i, articles[i].Title, title)
		}
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestArticleUpdate_OnlyTitleAndContent(t *testing.T) {
	db := newTestDB(t)
	created := createTestArticle(t, db, "before", "alice@example.com")

	changed := *created
	changed.Title = "after"
	changed.Content = "new body"
	changed.Author = "mallory@example.com"
	if err := db.Articles().Update(context.Background(), &changed); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Articles().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "after" || got.Content != "new body" {
		t.Errorf("title/content = %q/%q, want after/new body", got.Title, got.Content)
	}
	if got.Author != "alice@example.com" {
		t.Errorf("Author = %q, want it unchanged", got.Author)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", created.CreatedAt, got.CreatedAt)
	}
}

func TestArticleUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Articles().Update(context.Background(), &model.Article{ID: 42, Title: "x", Content: "y"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestArticleDelete(t *testing.T) {
	db := newTestDB(t)
	created := createTestArticle(t, db, "doomed", "alice@example.com")

	if err := db.Articles().Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.Articles().GetByID(context.Background(), created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestArticleDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Articles().Delete(context.Background(), 7)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// TRANSACTION TESTS
// =========================================================================

func TestWithinTx_Commits(t *testing.T) {
	db := newTestDB(t)
	created := createTestArticle(t, db, "before", "alice@example.com")

	err := db.Articles().WithinTx(context.Background(), func(tx repository.ArticleRepository) error {
		a, err := tx.GetByID(context.Background(), created.ID)
		if err != nil {
			return err
		}
		a.Title = "after"
		return tx.Update(context.Background(), a)
	})
	if err != nil {
		t.Fatalf("WithinTx() error = %v", err)
	}

	got, _ := db.Articles().GetByID(context.Background(), created.ID)
	if got.Title != "after" {
		t.Errorf("Title = %q, want %q", got.Title, "after")
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	created := createTestArticle(t, db, "kept", "alice@example.com")
	boom := errors.New("boom")

	err := db.Articles().WithinTx(context.Background(), func(tx repository.ArticleRepository) error {
		if err := tx.Delete(context.Background(), created.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want %v", err, boom)
	}

	if _, err := db.Articles().GetByID(context.Background(), created.ID); err != nil {
		t.Errorf("article should survive a rolled-back delete, got %v", err)
	}
}

func TestWithinTx_Nested(t *testing.T) {
	db := newTestDB(t)

	err := db.Articles().WithinTx(context.Background(), func(tx repository.ArticleRepository) error {
		// A nested call must reuse the open transaction. With one connection
		// in the pool, starting a second one would block forever.
		return tx.WithinTx(context.Background(), func(inner repository.ArticleRepository) error {
			return inner.Create(context.Background(), newArticle("nested", "alice@example.com"))
		})
	})
	if err != nil {
		t.Fatalf("WithinTx() error = %v", err)
	}

	articles, _ := db.Articles().List(context.Background())
	if len(articles) != 1 {
		t.Errorf("List() returned %d articles, want 1", len(articles))
	}
}

// TestFullCRUDLifecycle walks an article through create → read → update →
// delete, the way the API uses the store.
func TestFullCRUDLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := db.Articles()

	a := newArticle("draft", "alice@example.com")
	if err := store.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a.Title = "final"
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "final" {
		t.Errorf("Title = %q, want final", got.Title)
	}

	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if all, _ := store.List(ctx); len(all) != 0 {
		t.Errorf("List() after delete returned %d articles", len(all))
	}
}
