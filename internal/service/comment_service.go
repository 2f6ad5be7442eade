package service

import (
	"context"
	"fmt"

	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/metrics"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
	"github.com/news-notes-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	news      repository.NewsRepository
	comments  repository.CommentRepository
	validator *validation.Validator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func newCommentService(repos *repository.Repositories, validator *validation.Validator, m *metrics.Metrics, log zerolog.Logger) *commentService {
	return &commentService{
		news:      repos.News,
		comments:  repos.Comment,
		validator: validator,
		metrics:   m,
		log:       log.With().Str("service", "comment").Logger(),
	}
}

// Create adds a comment by actor under the news item
func (s *commentService) Create(ctx context.Context, actor access.Actor, newsID int64, form models.CommentForm) (*models.Comment, error) {
	if err := access.DecideCreate(actor).Err(); err != nil {
		return nil, err
	}

	news, err := s.news.GetByID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("get news %d: %w", newsID, err)
	}
	if news == nil {
		return nil, ErrNotFound
	}

	if err := s.validate(&form); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		NewsID:   newsID,
		AuthorID: actor.UserID,
		Text:     form.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.log.Info().
		Int64("comment_id", comment.ID).
		Int64("news_id", newsID).
		Str("author_id", actor.UserID.String()).
		Msg("Comment created")

	return comment, nil
}

// ForEdit returns the comment if actor may edit it
func (s *commentService) ForEdit(ctx context.Context, actor access.Actor, id int64) (*models.Comment, error) {
	return s.authorize(ctx, actor, id, access.OpEdit)
}

// Update replaces the comment text; the author and news item stay as they were
func (s *commentService) Update(ctx context.Context, actor access.Actor, id int64, form models.CommentForm) (*models.Comment, error) {
	comment, err := s.authorize(ctx, actor, id, access.OpEdit)
	if err != nil {
		return nil, err
	}

	if err := s.validate(&form); err != nil {
		return nil, err
	}

	if err := s.comments.UpdateText(ctx, id, form.Text); err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	comment.Text = form.Text

	s.log.Info().Int64("comment_id", id).Msg("Comment updated")
	return comment, nil
}

// ForDelete returns the comment if actor may delete it
func (s *commentService) ForDelete(ctx context.Context, actor access.Actor, id int64) (*models.Comment, error) {
	return s.authorize(ctx, actor, id, access.OpDelete)
}

// Delete removes the comment and returns what was deleted
func (s *commentService) Delete(ctx context.Context, actor access.Actor, id int64) (*models.Comment, error) {
	comment, err := s.authorize(ctx, actor, id, access.OpDelete)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete comment %d: %w", id, err)
	}

	s.log.Info().Int64("comment_id", id).Int64("news_id", comment.NewsID).Msg("Comment deleted")
	return comment, nil
}

// authorize loads the comment and applies the ownership rule. Anonymous actors
// are turned away before the lookup so they learn nothing about the id.
func (s *commentService) authorize(ctx context.Context, actor access.Actor, id int64, op access.Operation) (*models.Comment, error) {
	if !actor.Authenticated() && op != access.OpView {
		return nil, ErrUnauthenticated
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	if comment == nil {
		return nil, ErrNotFound
	}

	decision := access.Decide(actor, access.Comment(comment.AuthorID), op)
	if decision == access.Deny {
		s.metrics.Denied(string(access.KindComment), string(op))
		s.log.Warn().
			Int64("comment_id", id).
			Str("actor_id", actor.UserID.String()).
			Str("operation", string(op)).
			Msg("Comment access denied")
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) validate(form *models.CommentForm) error {
	if errs := s.validator.ValidateComment(form); !errs.Empty() {
		fe := &FormError{Fields: errs}
		s.metrics.Rejected("comment", fe.fieldNames()...)
		return fe
	}
	return nil
}
