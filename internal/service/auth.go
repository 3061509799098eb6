package service

// AUTHENTICATION:
// AuthService sits between the auth handlers and the stores:
//
//	AuthHandler (HTTP) → AuthService → UserRepository, RefreshTokenRepository (DB)
//	                                 ↘ TokenService (JWT), PasswordService (bcrypt)
//
// Two ways in (password and GitHub) end the same way: the user gets a fresh
// access token and a refresh token. A user holds at most one refresh token;
// logging in again replaces it and logging out deletes it.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/devblog/internal/apperror"
	"github.com/sakif/devblog/internal/auth"
	"github.com/sakif/devblog/internal/model"
	"github.com/sakif/devblog/internal/repository"
)

// errBadCredentials is shared by every password-login failure so the response
// never tells an unknown email apart from a wrong password.
const errBadCredentials = "invalid email or password"

// AuthService handles the authentication business logic.
type AuthService struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	tokens        *auth.TokenService
	passwords     *auth.PasswordService
	logger        *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		tokens:        tokens,
		passwords:     passwords,
		logger:        logger,
	}
}

// AuthResult is returned by the login operations. It bundles the user and
// both tokens so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user by email and password.
//
// Unknown email, wrong password and password-less (GitHub-only) accounts all
// fail with the same apperror.Unauthenticated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.DummyVerify(password)
			return nil, apperror.Unauthenticated(errBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("password login failed", slog.String("email", email))
			return nil, apperror.Unauthenticated(errBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password for %s: %w", email, err)
	}

	s.logger.Info("user authenticated via password", slog.Int64("userID", user.ID))
	return s.issue(ctx, user)
}

// LoginGitHub completes a GitHub OAuth login.
//
// The GitHub account is matched to a local user by email. The first login
// creates that user (without a password, with the default role).
func (s *AuthService) LoginGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}
	if ghUser.Email == "" {
		return nil, apperror.Unauthenticated("GitHub account has no email address")
	}

	user, err := s.users.GetByEmail(ctx, ghUser.Email)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{Email: ghUser.Email, Role: model.DefaultRole}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating user %s: %w", ghUser.Email, err)
		}
		s.logger.Info("user created from GitHub login",
			slog.Int64("userID", user.ID),
			slog.String("login", ghUser.Login),
		)
	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up user %s: %w", ghUser.Email, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", ghUser.Login),
	)
	return s.issue(ctx, user)
}

// CreateNewAccessToken trades a refresh token for a new access token. The
// refresh token itself stays valid; it has no expiry and is not rotated.
func (s *AuthService) CreateNewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	stored, err := s.refreshTokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthenticated("unexpected token")
		}
		return "", fmt.Errorf("service/auth: looking up refresh token: %w", err)
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthenticated("unexpected token")
		}
		return "", fmt.Errorf("service/auth: fetching user %d: %w", stored.UserID, err)
	}

	access, err := s.tokens.Generate(identityOf(user))
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return access, nil
}

// Logout deletes the caller's refresh token. Access tokens already issued
// stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, id model.Identity) error {
	if err := s.refreshTokens.DeleteByUserID(ctx, id.UserID); err != nil {
		return fmt.Errorf("service/auth: deleting refresh token for user %d: %w", id.UserID, err)
	}
	s.logger.Info("user logged out", slog.Int64("userID", id.UserID))
	return nil
}

// GetUserByID returns the user for the given internal ID.
// Used by GET /api/me with the id taken from the access token.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}

// issue mints an access token and stores a new refresh token for user,
// replacing any previous one.
func (s *AuthService) issue(ctx context.Context, user *model.User) (*AuthResult, error) {
	access, err := s.tokens.Generate(identityOf(user))
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	refresh := &model.RefreshToken{UserID: user.ID, Token: auth.NewRefreshToken()}
	if err := s.refreshTokens.Save(ctx, refresh); err != nil {
		return nil, fmt.Errorf("service/auth: saving refresh token for user %d: %w", user.ID, err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh.Token,
	}, nil
}

func identityOf(u *model.User) model.Identity {
	return model.Identity{UserID: u.ID, Email: u.Email}
}
