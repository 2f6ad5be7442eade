package service

import (
	"context"
	"io"
	"time"

	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/auth"
	"github.com/news-notes-api/internal/config"
	"github.com/news-notes-api/internal/metrics"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
	"github.com/news-notes-api/internal/validation"
	"github.com/rs/zerolog"
)

// NewsService defines the read side of the news app
type NewsService interface {
	Home(ctx context.Context) ([]models.News, error)
	Detail(ctx context.Context, id int64) (*models.NewsDetail, error)
}

// CommentService defines comment operations; every write is checked against the author
type CommentService interface {
	Create(ctx context.Context, actor access.Actor, newsID int64, form models.CommentForm) (*models.Comment, error)
	ForEdit(ctx context.Context, actor access.Actor, id int64) (*models.Comment, error)
	Update(ctx context.Context, actor access.Actor, id int64, form models.CommentForm) (*models.Comment, error)
	ForDelete(ctx context.Context, actor access.Actor, id int64) (*models.Comment, error)
	Delete(ctx context.Context, actor access.Actor, id int64) (*models.Comment, error)
}

// NoteService defines note operations, all scoped to the note's author
type NoteService interface {
	List(ctx context.Context, actor access.Actor) ([]models.Note, error)
	Get(ctx context.Context, actor access.Actor, slug string) (*models.Note, error)
	Create(ctx context.Context, actor access.Actor, form models.NoteForm) (*models.Note, error)
	Update(ctx context.Context, actor access.Actor, slug string, form models.NoteForm) (*models.Note, error)
	Delete(ctx context.Context, actor access.Actor, slug string) (*models.Note, error)
}

// AuthService defines account and session operations
type AuthService interface {
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	SessionTTL() time.Duration
}

// ImportService defines seed data import
type ImportService interface {
	ImportNews(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

// Services holds all service interfaces
type Services struct {
	News    NewsService
	Comment CommentService
	Note    NoteService
	Auth    AuthService
	Import  ImportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) *Services {
	filter := validation.NewContentFilter(cfg.News.BadWords, cfg.News.Warning)
	validator := validation.NewValidator(filter)
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.SessionTTL)

	return &Services{
		News:    newNewsService(repos, cfg.News.HomePageSize, log),
		Comment: newCommentService(repos, validator, m, log),
		Note:    newNoteService(repos.Note, validator, m, log),
		Auth:    newAuthService(repos.User, tokens, log),
		Import:  newImportService(repos.News, validator, cfg.Import.BatchSize, log),
	}
}
