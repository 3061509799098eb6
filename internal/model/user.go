package model

import "time"

// DefaultRole is assigned to every user unless a caller sets another one.
const DefaultRole = "user"

// User is a registered account.
//
// Email is the login name and the identity written into Article.Author.
// PasswordHash is a bcrypt hash; it is empty for accounts that only ever
// signed in through GitHub, and such accounts cannot use password login.
// It is never serialised.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
