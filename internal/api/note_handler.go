package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/service"
	"github.com/rs/zerolog"
)

const doneURL = "/done/"

// NoteHandler handles the notes app. All routes sit behind loginRequired.
type NoteHandler struct {
	services *service.Services
	*responder
	log zerolog.Logger
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(services *service.Services, r *responder, log zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		services:  services,
		responder: r,
		log:       log.With().Str("handler", "note").Logger(),
	}
}

// List handles GET /notes/
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.services.Note.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// AddForm handles GET /add/
func (h *NoteHandler) AddForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"form": models.NoteForm{}})
}

// Add handles POST /add/
func (h *NoteHandler) Add(c *gin.Context) {
	var form models.NoteForm
	if fe := h.bind(c, "note", &form); fe != nil {
		h.fail(c, fe, gin.H{"form": form})
		return
	}

	if _, err := h.services.Note.Create(c.Request.Context(), actorFrom(c), form); err != nil {
		h.fail(c, err, gin.H{"form": form})
		return
	}

	redirect(c, doneURL)
}

// Detail handles GET /note/:slug/
func (h *NoteHandler) Detail(c *gin.Context) {
	note, err := h.services.Note.Get(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

// EditForm handles GET /edit/:slug/
func (h *NoteHandler) EditForm(c *gin.Context) {
	note, err := h.services.Note.Get(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"note": note,
		"form": models.NoteForm{Title: note.Title, Text: note.Text, Slug: note.Slug},
	})
}

// Edit handles POST /edit/:slug/
func (h *NoteHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)
	slug := c.Param("slug")

	// ownership first, so a non-author gets not-found whatever the form holds
	if _, err := h.services.Note.Get(ctx, actor, slug); err != nil {
		h.fail(c, err, nil)
		return
	}

	var form models.NoteForm
	if fe := h.bind(c, "note", &form); fe != nil {
		h.fail(c, fe, gin.H{"form": form})
		return
	}

	if _, err := h.services.Note.Update(ctx, actor, slug, form); err != nil {
		h.fail(c, err, gin.H{"form": form})
		return
	}

	redirect(c, doneURL)
}

// DeleteConfirm handles GET /delete/:slug/
func (h *NoteHandler) DeleteConfirm(c *gin.Context) {
	note, err := h.services.Note.Get(c.Request.Context(), actorFrom(c), c.Param("slug"))
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

// Delete handles POST /delete/:slug/
func (h *NoteHandler) Delete(c *gin.Context) {
	if _, err := h.services.Note.Delete(c.Request.Context(), actorFrom(c), c.Param("slug")); err != nil {
		h.fail(c, err, nil)
		return
	}
	redirect(c, doneURL)
}

// Done handles GET /done/
func (h *NoteHandler) Done(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Успешно!"})
}
