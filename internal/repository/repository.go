package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/news-notes-api/internal/database"
	"github.com/news-notes-api/internal/models"
)

var (
	// ErrSlugExists is returned when a note slug is already taken
	ErrSlugExists = errors.New("slug already exists")
	// ErrUsernameExists is returned when a username is already taken
	ErrUsernameExists = errors.New("username already exists")
)

// Lookups return (nil, nil) when the row does not exist.

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// NewsRepository defines the interface for news data operations
type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	BatchInsert(ctx context.Context, news []*models.News) (int, error)
	GetByID(ctx context.Context, id int64) (*models.News, error)
	// ListLatest returns up to limit news ordered by date desc, then id,
	// with comment counts filled in. A non-positive limit returns all news.
	// The limit is applied after that ordering, so the result is always the
	// newest limit items; callers rely on this to pick the home page.
	ListLatest(ctx context.Context, limit int) ([]models.News, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByNews(ctx context.Context, newsID int64) ([]models.Comment, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// NoteRepository defines the interface for note data operations
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetBySlug(ctx context.Context, slug string) (*models.Note, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SlugExists checks whether slug is used by any note other than exclude
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	News    NewsRepository
	Comment CommentRepository
	Note    NoteRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		News:    NewNewsRepo(db),
		Comment: NewCommentRepo(db),
		Note:    NewNoteRepo(db),
	}
}
