// Command adduser creates a password account in the devblog database.
//
// The API has no registration endpoint; accounts are created here or by a
// first GitHub login.
//
//	go run ./cmd/adduser -email alice@example.com -password 'correct horse'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/auth"
	"github.com/sakif/devblog/internal/model"
	sqliteRepo "github.com/sakif/devblog/internal/repository/sqlite"
	"github.com/sakif/devblog/internal/validation"
)

func main() {
	email := flag.String("email", "", "login email (required)")
	password := flag.String("password", "", "password (required)")
	role := flag.String("role", model.DefaultRole, "user role")
	dbPath := flag.String("db", envOr("DB_PATH", "data/devblog.db"), "SQLite database file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(context.Background(), *dbPath, *email, *password, *role); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && len(appErr.Violations) > 0 {
			for _, v := range appErr.Violations {
				logger.Error("invalid flag", slog.String("field", v.Field), slog.String("reason", v.Message))
			}
			flag.Usage()
			os.Exit(2)
		}
		logger.Error("adduser failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("user created", slog.String("email", *email), slog.String("role", *role))
}

func run(ctx context.Context, dbPath, email, password, role string) error {
	if err := validation.New().Validate(validation.LoginInput{Email: email, Password: password}); err != nil {
		return err
	}

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Users().Create(ctx, &model.User{Email: email, PasswordHash: hash, Role: role})
	if errors.Is(err, apperror.ErrConflict) {
		return fmt.Errorf("a user with email %s already exists", email)
	}
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
