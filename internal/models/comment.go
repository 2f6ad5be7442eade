package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on a news item
type Comment struct {
	ID             int64     `json:"id" db:"id"`
	NewsID         int64     `json:"news_id" db:"news_id"`
	AuthorID       uuid.UUID `json:"author_id" db:"author_id"`
	AuthorUsername string    `json:"author" db:"-"`
	Text           string    `json:"text" db:"text"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// CommentForm is the user-submitted part of a comment
type CommentForm struct {
	Text string `json:"text" form:"text" binding:"required"`
}
