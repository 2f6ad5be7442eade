package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a private note owned by its author
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Text      string    `json:"text" db:"text"`
	Slug      string    `json:"slug" db:"slug"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NoteForm is the user-submitted part of a note; an empty slug is derived from the title
type NoteForm struct {
	Title string `json:"title" form:"title" binding:"required,max=100"`
	Text  string `json:"text" form:"text" binding:"required"`
	Slug  string `json:"slug" form:"slug" binding:"max=100"`
}

// Column sizes for notes
const (
	MaxNoteTitleLength = 100
	MaxSlugLength      = 100
)
