package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of the repository interfaces. They store
// copies, never the caller's pointers, so a test cannot change stored state by
// accident. Each has an err field to simulate a database failure.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[int64]model.Article
	nextID   int64
	err      error // returned by every method when set

	txCalls int
}

var _ repository.ArticleRepository = (*fakeArticleRepo)(nil)

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: make(map[int64]model.Article)}
}

func (f *fakeArticleRepo) Create(_ context.Context, a *model.Article) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now().UTC()
	f.articles[a.ID] = *a
	return nil
}

func (f *fakeArticleRepo) GetByID(_ context.Context, id int64) (*model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.articles[id]
	if !ok {
		return nil, apperror.NotFound("article", strconv.FormatInt(id, 10))
	}
	return &a, nil
}

func (f *fakeArticleRepo) List(_ context.Context) ([]model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Article, 0, len(f.articles))
	for id := int64(1); id <= f.nextID; id++ {
		if a, ok := f.articles[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeArticleRepo) Update(_ context.Context, a *model.Article) error {
	if f.err != nil {
		return f.err
	}
	stored, ok := f.articles[a.ID]
	if !ok {
		return apperror.NotFound("article", strconv.FormatInt(a.ID, 10))
	}
	stored.Title = a.Title
	stored.Content = a.Content
	f.articles[a.ID] = stored
	return nil
}

func (f *fakeArticleRepo) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.articles[id]; !ok {
		return apperror.NotFound("article", strconv.FormatInt(id, 10))
	}
	delete(f.articles, id)
	return nil
}

// WithinTx serializes callbacks and restores a snapshot when fn fails,
// which is all a transaction means to the service.
func (f *fakeArticleRepo) WithinTx(_ context.Context, fn func(tx repository.ArticleRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCalls++

	snapshot := make(map[int64]model.Article, len(f.articles))
	for k, v := range f.articles {
		snapshot[k] = v
	}

	if err := fn(f); err != nil {
		f.articles = snapshot
		return err
	}
	return nil
}

type fakeUserRepo struct {
	users  map[int64]model.User
	nextID int64
	err    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	if u.Role == "" {
		u.Role = model.DefaultRole
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

type fakeRefreshTokenRepo struct {
	byUser map[int64]model.RefreshToken
	nextID int64
	err    error
}

var _ repository.RefreshTokenRepository = (*fakeRefreshTokenRepo)(nil)

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{byUser: make(map[int64]model.RefreshToken)}
}

func (f *fakeRefreshTokenRepo) GetByUserID(_ context.Context, userID int64) (*model.RefreshToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byUser[userID]
	if !ok {
		return nil, apperror.NotFound("refresh token for user", strconv.FormatInt(userID, 10))
	}
	return &t, nil
}

func (f *fakeRefreshTokenRepo) GetByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.byUser {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, apperror.NotFound("refresh token", "")
}

func (f *fakeRefreshTokenRepo) Save(_ context.Context, t *model.RefreshToken) error {
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.byUser[t.UserID]; ok {
		t.ID = existing.ID
	} else {
		f.nextID++
		t.ID = f.nextID
	}
	f.byUser[t.UserID] = *t
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.byUser, userID)
	return nil
}
