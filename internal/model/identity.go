package model

// Identity is who an authenticated request acts as. Email is the string
// compared against Article.Author.
type Identity struct {
	UserID int64
	Email  string
}
