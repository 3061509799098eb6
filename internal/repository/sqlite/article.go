package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// If *ArticleDB stops satisfying repository.ArticleRepository, the build breaks
// here instead of somewhere in main.go.
var _ repository.ArticleRepository = (*ArticleDB)(nil)

// ArticleDB is the SQLite-backed article store.
//
// conn is only set on the top-level store. A store returned to a WithinTx
// callback has conn == nil and q bound to the open *sql.Tx.
type ArticleDB struct {
	conn *sql.DB
	q    querier
}

// Create inserts a new article and fills in its generated ID and CreatedAt.
//
// ID GENERATION:
// The id column is INTEGER PRIMARY KEY AUTOINCREMENT, so SQLite assigns it and
// we read it back with LastInsertId. AUTOINCREMENT (rather than plain rowid)
// guarantees an id is never reused, even after the newest article is deleted.
//
// TIMESTAMPS:
// time.Now().UTC() also strips the monotonic clock reading, which would
// otherwise end up in the stored text as "m=+0.0001".
func (s *ArticleDB) Create(ctx context.Context, article *model.Article) error {
	article.CreatedAt = time.Now().UTC()

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO articles (title, content, author, created_at)
		 VALUES (?, ?, ?, ?)`,
		article.Title,
		article.Content,
		article.Author,
		article.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading article id: %w", err)
	}
	article.ID = id

	return nil
}

// GetByID retrieves a single article. A missing row becomes apperror.NotFound
// so the layers above never see sql.ErrNoRows.
func (s *ArticleDB) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	var a model.Article

	err := s.q.QueryRowContext(ctx,
		`SELECT id, title, content, author, created_at
		 FROM articles
		 WHERE id = ?`,
		id,
	).Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Author,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("article", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting article %d: %w", id, err)
	}

	return &a, nil
}

// List returns every article in insertion order.
//
// There is no pagination: the blog is small and the API returns the full list.
func (s *ArticleDB) List(ctx context.Context) ([]model.Article, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, title, content, author, created_at
		 FROM articles
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing articles: %w", err)
	}
	// CRITICAL: rows pins the (only) connection until closed.
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	articles := make([]model.Article, 0)
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating article rows: %w", err)
	}

	return articles, nil
}

// Update writes title and content. Author and created_at are never part of
// the UPDATE, so they cannot change after creation.
func (s *ArticleDB) Update(ctx context.Context, article *model.Article) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE articles SET title = ?, content = ? WHERE id = ?`,
		article.Title,
		article.Content,
		article.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating article %d: %w", article.ID, err)
	}

	return checkAffected(res, "article", article.ID)
}

// Delete removes an article by id.
func (s *ArticleDB) Delete(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting article %d: %w", id, err)
	}

	return checkAffected(res, "article", id)
}

// WithinTx runs fn against a store bound to one transaction.
//
// TRANSACTIONS IN database/sql:
// BeginTx reserves a connection for the transaction. Everything run through
// the *sql.Tx uses that connection, and nothing else can use it until Commit
// or Rollback. With MaxOpenConns(1) that means other requests wait, which is
// exactly the read-check-write isolation update and delete need.
//
// Calling WithinTx on a store that is already transaction-bound just runs fn
// in the existing transaction.
func (s *ArticleDB) WithinTx(ctx context.Context, fn func(tx repository.ArticleRepository) error) error {
	if s.conn == nil {
		return fn(s)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(&ArticleDB{q: tx}); err != nil {
		// Rollback error is secondary: the caller cares about why fn failed.
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}

	return nil
}

// checkAffected turns "0 rows affected" into a NotFound error.
func checkAffected(res sql.Result, resource string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, strconv.FormatInt(id, 10))
	}
	return nil
}
