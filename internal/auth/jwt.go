// Package auth provides JWT access tokens, refresh token values, password
// hashing and GitHub OAuth for the blog API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. A user logs in with email + password (POST /api/login) or through GitHub
//     (/auth/github/login → /auth/github/callback)
//  2. The server issues a short-lived JWT access token and a long-lived opaque
//     refresh token. The access token is returned in the body and also set in
//     an HttpOnly "token" cookie
//  3. On subsequent API calls, middleware reads the token from the
//     Authorization header (or the cookie), validates it, and puts the
//     caller's Identity in the request context
//  4. When the access token expires, the client trades its refresh token for a
//     new one (POST /api/token)
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"alice@example.com","id":1,"exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server can verify the signature without any DB lookup, using just the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/devblog/internal/model"
)

// Issuer is written into every token and required on validation.
const Issuer = "devblog"

// MinSecretLength is the shortest signing secret accepted. HS256 keys shorter
// than the 32-byte hash output weaken the signature.
const MinSecretLength = 32

// DefaultAccessTokenTTL is used when NewTokenService gets a zero TTL.
const DefaultAccessTokenTTL = 2 * time.Hour

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and access
// token lifetime.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims which includes
// standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
//
// "sub" (Subject) carries the user's email, the identity articles are
// authored under. "id" carries the numeric user id so refresh and logout
// don't need an email lookup.
type claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for id, valid for the
// service's configured TTL.
func (s *TokenService) Generate(id model.Identity) (string, error) {
	return s.GenerateWithDuration(id, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(id model.Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		UserID: id.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    Issuer,
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// TTL returns the access token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Validate parses and verifies a JWT string and returns the identity it
// carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches Issuer
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, fmt.Errorf("auth: token expired")
		}
		return model.Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return model.Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return model.Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return model.Identity{UserID: c.UserID, Email: c.Subject}, nil
}
