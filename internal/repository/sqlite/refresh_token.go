package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

var _ repository.RefreshTokenRepository = (*RefreshTokenDB)(nil)

// RefreshTokenDB is the SQLite-backed refresh token store. The schema allows
// one token per user (user_id is UNIQUE).
type RefreshTokenDB struct {
	q querier
}

// GetByUserID returns the token currently issued to userID.
func (s *RefreshTokenDB) GetByUserID(ctx context.Context, userID int64) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, refresh_token FROM refresh_tokens WHERE user_id = ?`,
		userID,
	).Scan(&t.ID, &t.UserID, &t.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("refresh token for user", strconv.FormatInt(userID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting refresh token for user %d: %w", userID, err)
	}
	return &t, nil
}

// GetByToken looks a token up by its value. The not-found error never
// contains the value itself.
func (s *RefreshTokenDB) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, refresh_token FROM refresh_tokens WHERE refresh_token = ?`,
		token,
	).Scan(&t.ID, &t.UserID, &t.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Code:    apperror.CodeNotFound,
				Message: "refresh token not found",
			}
		}
		return nil, fmt.Errorf("sqlite: getting refresh token: %w", err)
	}
	return &t, nil
}

// Save stores token for token.UserID, replacing any existing one.
//
// UPSERT:
// "INSERT ... ON CONFLICT(user_id) DO UPDATE" keeps the existing row (and its
// id) and only swaps the token value. RETURNING hands back the row id in the
// same statement, whether the row was inserted or updated.
func (s *RefreshTokenDB) Save(ctx context.Context, token *model.RefreshToken) error {
	err := s.q.QueryRowContext(ctx,
		`INSERT INTO refresh_tokens (user_id, refresh_token)
		 VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET refresh_token = excluded.refresh_token
		 RETURNING id`,
		token.UserID,
		token.Token,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("sqlite: saving refresh token for user %d: %w", token.UserID, err)
	}
	return nil
}

// DeleteByUserID removes the user's token. Deleting when none exists is not
// an error: logout is idempotent.
func (s *RefreshTokenDB) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := s.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting refresh token for user %d: %w", userID, err)
	}
	return nil
}
