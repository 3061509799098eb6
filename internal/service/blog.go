// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses and validates requests, writes responses
//	Service (Business layer) → enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept plain Go values (ids, strings, a requester identity), never
// *http.Request, and return domain errors from internal/apperror. The handler
// layer translates those into status codes.
//
// DEPENDENCY INJECTION:
// BlogService takes a repository.ArticleRepository (interface), NOT a
// *sqlite.ArticleDB. Tests pass an in-memory fake (see blog_test.go).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

// BlogService handles business logic for articles.
type BlogService struct {
	repo   repository.ArticleRepository
	logger *slog.Logger
}

// NewBlogService creates a new BlogService.
func NewBlogService(repo repository.ArticleRepository, logger *slog.Logger) *BlogService {
	return &BlogService{
		repo:   repo,
		logger: logger,
	}
}

// AddArticle saves a new article written by author.
//
// Title and content arrive already validated by the handler. Author is the
// authenticated caller's identity; an empty author means the request was not
// authenticated and is refused. Titles need not be unique.
func (s *BlogService) AddArticle(ctx context.Context, title, content, author string) (*model.Article, error) {
	if author == "" {
		return nil, apperror.Unauthenticated("an authenticated author is required")
	}

	article := &model.Article{
		Title:   title,
		Content: content,
		Author:  author,
	}

	if err := s.repo.Create(ctx, article); err != nil {
		s.logger.Error("failed to create article",
			slog.String("author", author),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/blog: creating article: %w", err)
	}

	s.logger.Info("article created",
		slog.Int64("id", article.ID),
		slog.String("author", author),
	)

	return article, nil
}

// ListArticles returns every article as a summary, in insertion order.
func (s *BlogService) ListArticles(ctx context.Context) ([]model.ArticleSummary, error) {
	articles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/blog: listing articles: %w", err)
	}

	summaries := make([]model.ArticleSummary, 0, len(articles))
	for _, a := range articles {
		summaries = append(summaries, a.Summary())
	}
	return summaries, nil
}

// GetArticle returns one article with its author and creation time.
//
// A missing article is reported as apperror.ArticleNotFound (code
// ARTICLE_NOT_FOUND) rather than the store's generic NotFound.
func (s *BlogService) GetArticle(ctx context.Context, id int64) (*model.ArticleDetail, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ArticleNotFound(strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("service/blog: getting article %d: %w", id, err)
	}

	detail := article.Detail()
	return &detail, nil
}

// DeleteArticle removes an article on behalf of requester.
//
// Fetch, authorization check and delete run in one transaction, so the
// article cannot change hands (or disappear) between the check and the
// delete. Not found → apperror.NotFound; someone else's article →
// apperror.NotAuthorized. In both cases nothing is deleted.
func (s *BlogService) DeleteArticle(ctx context.Context, id int64, requester string) error {
	err := s.repo.WithinTx(ctx, func(tx repository.ArticleRepository) error {
		article, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeArticleAuthor(article, requester); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			s.logger.Warn("article delete refused",
				slog.Int64("id", id),
				slog.String("requester", requester),
			)
		}
		return fmt.Errorf("service/blog: deleting article %d: %w", id, err)
	}

	s.logger.Info("article deleted",
		slog.Int64("id", id),
		slog.String("author", requester),
	)
	return nil
}

// UpdateArticle replaces the title and content of an article on behalf of
// requester, as one read-modify-write transaction.
//
// ID, Author and CreatedAt are never touched. The returned article is the
// state that was committed.
func (s *BlogService) UpdateArticle(ctx context.Context, id int64, title, content, requester string) (*model.Article, error) {
	var updated *model.Article

	err := s.repo.WithinTx(ctx, func(tx repository.ArticleRepository) error {
		article, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeArticleAuthor(article, requester); err != nil {
			return err
		}

		article.Title = title
		article.Content = content
		if err := tx.Update(ctx, article); err != nil {
			return err
		}
		updated = article
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			s.logger.Warn("article update refused",
				slog.Int64("id", id),
				slog.String("requester", requester),
			)
		}
		return nil, fmt.Errorf("service/blog: updating article %d: %w", id, err)
	}

	s.logger.Info("article updated",
		slog.Int64("id", id),
		slog.String("author", requester),
	)
	return updated, nil
}

// authorizeArticleAuthor allows the request only when requester is exactly
// the article's author. There is no role override, and an empty requester
// never matches.
func authorizeArticleAuthor(article *model.Article, requester string) error {
	if requester == "" || article.Author != requester {
		return apperror.NotAuthorized()
	}
	return nil
}
