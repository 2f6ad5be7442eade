package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/metrics"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
	"github.com/news-notes-api/internal/validation"
	"github.com/rs/zerolog"
)

const emptySlugMessage = "Не удалось сформировать slug из заголовка, укажите его вручную."

// noteService is the concrete implementation of NoteService
type noteService struct {
	notes     repository.NoteRepository
	validator *validation.Validator
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func newNoteService(notes repository.NoteRepository, validator *validation.Validator, m *metrics.Metrics, log zerolog.Logger) *noteService {
	return &noteService{
		notes:     notes,
		validator: validator,
		metrics:   m,
		log:       log.With().Str("service", "note").Logger(),
	}
}

// List returns the actor's own notes
func (s *noteService) List(ctx context.Context, actor access.Actor) ([]models.Note, error) {
	if err := access.RequireLogin(actor).Err(); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByAuthor(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Get returns the note if the actor owns it
func (s *noteService) Get(ctx context.Context, actor access.Actor, slug string) (*models.Note, error) {
	return s.authorize(ctx, actor, slug, access.OpView)
}

// Create stores a new note owned by the actor
func (s *noteService) Create(ctx context.Context, actor access.Actor, form models.NoteForm) (*models.Note, error) {
	if err := access.DecideCreate(actor).Err(); err != nil {
		return nil, err
	}

	slug, err := s.clean(ctx, &form, uuid.Nil)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		Title:    form.Title,
		Text:     form.Text,
		Slug:     slug,
		AuthorID: actor.UserID,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, s.reject(newFormError("slug", slug+validation.SlugExistsWarning))
		}
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.log.Info().Str("slug", note.Slug).Str("author_id", actor.UserID.String()).Msg("Note created")
	return note, nil
}

// Update edits title, text and slug of the actor's note
func (s *noteService) Update(ctx context.Context, actor access.Actor, slug string, form models.NoteForm) (*models.Note, error) {
	note, err := s.authorize(ctx, actor, slug, access.OpEdit)
	if err != nil {
		return nil, err
	}

	newSlug, err := s.clean(ctx, &form, note.ID)
	if err != nil {
		return nil, err
	}

	updated := *note
	updated.Title, updated.Text, updated.Slug = form.Title, form.Text, newSlug
	if err := s.notes.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, s.reject(newFormError("slug", newSlug+validation.SlugExistsWarning))
		}
		return nil, fmt.Errorf("update note %s: %w", slug, err)
	}

	s.log.Info().Str("slug", updated.Slug).Str("old_slug", slug).Msg("Note updated")
	return &updated, nil
}

// Delete removes the actor's note and returns what was deleted
func (s *noteService) Delete(ctx context.Context, actor access.Actor, slug string) (*models.Note, error) {
	note, err := s.authorize(ctx, actor, slug, access.OpDelete)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Delete(ctx, note.ID); err != nil {
		return nil, fmt.Errorf("delete note %s: %w", slug, err)
	}

	s.log.Info().Str("slug", slug).Msg("Note deleted")
	return note, nil
}

func (s *noteService) authorize(ctx context.Context, actor access.Actor, slug string, op access.Operation) (*models.Note, error) {
	if err := access.RequireLogin(actor).Err(); err != nil {
		return nil, err
	}

	note, err := s.notes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", slug, err)
	}
	if note == nil {
		return nil, ErrNotFound
	}

	decision := access.Decide(actor, access.Note(note.AuthorID), op)
	if decision == access.Deny {
		s.metrics.Denied(string(access.KindNote), string(op))
		s.log.Warn().
			Str("slug", slug).
			Str("actor_id", actor.UserID.String()).
			Str("operation", string(op)).
			Msg("Note access denied")
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return note, nil
}

// clean validates the form and resolves the slug, deriving it from the title
// when empty and rejecting one already used by a note other than self
func (s *noteService) clean(ctx context.Context, form *models.NoteForm, self uuid.UUID) (string, error) {
	if errs := s.validator.ValidateNote(form); !errs.Empty() {
		return "", s.reject(&FormError{Fields: errs})
	}

	slug := form.Slug
	if slug == "" {
		slug = validation.Slugify(form.Title)
		if slug == "" {
			return "", s.reject(newFormError("slug", emptySlugMessage))
		}
	}

	taken, err := s.notes.SlugExists(ctx, slug, self)
	if err != nil {
		return "", fmt.Errorf("check slug %s: %w", slug, err)
	}
	if taken {
		return "", s.reject(newFormError("slug", slug+validation.SlugExistsWarning))
	}
	return slug, nil
}

func (s *noteService) reject(fe *FormError) *FormError {
	s.metrics.Rejected("note", fe.fieldNames()...)
	return fe
}
