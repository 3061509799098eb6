package auth

import "github.com/google/uuid"

// NewRefreshToken returns a new opaque refresh token value.
//
// Refresh tokens are not JWTs: they carry no claims and are only meaningful
// as a lookup key into the refresh_tokens table. A random (v4) UUID gives 122
// bits of randomness from crypto/rand.
func NewRefreshToken() string {
	return uuid.NewString()
}
