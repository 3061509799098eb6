// Package repository declares the persistence contracts the service layer
// depends on. Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/devblog/internal/model"
)

// ArticleRepository stores articles.
//
// GetByID, Update and Delete return an error matching apperror.ErrNotFound
// when no article has the given id.
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	GetByID(ctx context.Context, id int64) (*model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id int64) error

	// WithinTx runs fn against a repository bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx ArticleRepository) error) error
}

// UserRepository looks up and creates user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// RefreshTokenRepository stores at most one refresh token per user.
type RefreshTokenRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.RefreshToken, error)
	GetByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	// Save inserts the token, replacing any token the user already has.
	Save(ctx context.Context, token *model.RefreshToken) error
	DeleteByUserID(ctx context.Context, userID int64) error
}
