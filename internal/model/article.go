// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: plain values with json tags,
// no behaviour beyond small view helpers.
package model

import "time"

// Article is a blog post.
//
// Author holds the identity (the email) of the user who created the article.
// It is a plain string rather than a foreign key to users: authorization only
// ever compares it to the requester's identity. Author and CreatedAt never
// change after the article is created.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArticleSummary is the list view of an article.
type ArticleSummary struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ArticleDetail is the single-article view, including authorship.
type ArticleDetail struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary returns the list view of a.
func (a Article) Summary() ArticleSummary {
	return ArticleSummary{ID: a.ID, Title: a.Title, Content: a.Content}
}

// Detail returns the single-article view of a.
func (a Article) Detail() ArticleDetail {
	return ArticleDetail{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Author:    a.Author,
		CreatedAt: a.CreatedAt,
	}
}
