package model

// RefreshToken links an opaque token string to exactly one user. A user has
// at most one refresh token; issuing a new one replaces the old.
type RefreshToken struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Token  string `json:"refreshToken"`
}
