package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the SQLite-backed user store.
type UserDB struct {
	q querier
}

// Create inserts a new user. An empty Role becomes model.DefaultRole.
//
// The email column is UNIQUE. Instead of checking for an existing row first
// (which would race with a concurrent insert) we let SQLite reject the
// duplicate and translate the constraint error into apperror.Conflict.
func (s *UserDB) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.DefaultRole
	}
	user.CreatedAt = time.Now().UTC()

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.scanOne(s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at
		 FROM users WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by login email.
func (s *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.scanOne(s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at
		 FROM users WHERE email = ?`,
		email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

func (s *UserDB) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate value
// in a UNIQUE column.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
