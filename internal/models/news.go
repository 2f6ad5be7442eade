package models

import (
	"time"
)

// News represents a published news item
type News struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Text         string    `json:"text" db:"text"`
	Date         time.Time `json:"date" db:"date"`
	CommentCount int       `json:"comment_count" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewsDetail is a news item together with its ordered comments
type NewsDetail struct {
	News     News      `json:"news"`
	Comments []Comment `json:"comments"`
}

// NewsNDJSON represents a news record from an NDJSON seed file
type NewsNDJSON struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Date  string `json:"date,omitempty"`
}

// MaxNewsTitleLength mirrors the news.title column size
const MaxNewsTitleLength = 250
