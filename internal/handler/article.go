package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/auth"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/validation"
)

// BlogService is what ArticleHandler needs from the service layer.
// *service.BlogService implements it; tests pass a fake.
type BlogService interface {
	AddArticle(ctx context.Context, title, content, author string) (*model.Article, error)
	ListArticles(ctx context.Context) ([]model.ArticleSummary, error)
	GetArticle(ctx context.Context, id int64) (*model.ArticleDetail, error)
	DeleteArticle(ctx context.Context, id int64, requester string) error
	UpdateArticle(ctx context.Context, id int64, title, content, requester string) (*model.Article, error)
}

// ArticleHandler serves the /api/articles resource.
//
// Each write handler follows the same steps: decode the body, validate it,
// read the caller's identity from the context (placed there by
// auth.RequireAuth), then hand plain values to the service.
type ArticleHandler struct {
	blog      BlogService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewArticleHandler creates an ArticleHandler.
func NewArticleHandler(blog BlogService, validator *validation.Validator, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		blog:      blog,
		validator: validator,
		logger:    logger,
	}
}

// HandleCreate adds an article authored by the caller.
//
// HTTP: POST /api/articles
// REQUEST BODY: {"title": "Hello", "content": "First post"}
// RESPONSE: 201 + the created article with author and createdAt
func (h *ArticleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeArticle(w, r)
	if !ok {
		return
	}

	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	article, err := h.blog.AddArticle(r.Context(), *in.Title, *in.Content, id.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, article.Detail())
}

// HandleList returns every article as {id, title, content}.
//
// HTTP: GET /api/articles
func (h *ArticleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.blog.ListArticles(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, articles)
}

// HandleGet returns one article.
//
// HTTP: GET /api/articles/{id}
// A non-numeric id is a 400; an unknown one a 404 ARTICLE_NOT_FOUND.
func (h *ArticleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseArticleID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	article, err := h.blog.GetArticle(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, article)
}

// HandleDelete deletes an article the caller wrote.
//
// HTTP: DELETE /api/articles/{id}
// RESPONSE: 200 with an empty body
func (h *ArticleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	articleID, err := parseArticleID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.blog.DeleteArticle(r.Context(), articleID, id.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleUpdate replaces the title and content of an article the caller wrote.
//
// HTTP: PUT /api/articles/{id}
// REQUEST BODY: {"title": "Hello", "content": "Edited"}
func (h *ArticleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	articleID, err := parseArticleID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	in, ok := h.decodeArticle(w, r)
	if !ok {
		return
	}

	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	article, err := h.blog.UpdateArticle(r.Context(), articleID, *in.Title, *in.Content, id.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, article.Detail())
}

// decodeArticle decodes and validates an article body. On failure it has
// already written the 400 response.
func (h *ArticleHandler) decodeArticle(w http.ResponseWriter, r *http.Request) (validation.ArticleInput, bool) {
	var in validation.ArticleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return in, false
	}

	if violations := h.validator.ValidateArticle(in); len(violations) > 0 {
		writeError(w, r, h.logger, apperror.InvalidInput(violations))
		return in, false
	}
	return in, true
}

// identity reads the caller from the request context. Routes using it sit
// behind auth.RequireAuth, so a missing identity means the route was wired
// without it; answer 401 rather than act anonymously.
func (h *ArticleHandler) identity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthenticated("valid authentication required"))
	}
	return id, ok
}
