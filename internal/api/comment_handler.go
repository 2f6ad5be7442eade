package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/service"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment writes. All routes sit behind loginRequired.
type CommentHandler struct {
	services *service.Services
	news     *NewsHandler
	*responder
	log zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, r *responder, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services:  services,
		news:      NewNewsHandler(services, r, log),
		responder: r,
		log:       log.With().Str("handler", "comment").Logger(),
	}
}

// Create handles POST /news/:id/
func (h *CommentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	// a rejected comment is answered with the news page it was posted on
	page, err := h.news.detailPage(c)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	id, _ := idParam(c)

	var form models.CommentForm
	if fe := h.bind(c, "comment", &form); fe != nil {
		page["form"] = form
		h.fail(c, fe, page)
		return
	}

	comment, err := h.services.Comment.Create(ctx, actorFrom(c), id, form)
	if err != nil {
		page["form"] = form
		h.fail(c, err, page)
		return
	}

	redirect(c, commentsURL(comment.NewsID))
}

// EditForm handles GET /edit_comment/:id/
func (h *CommentHandler) EditForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.fail(c, service.ErrNotFound, nil)
		return
	}

	comment, err := h.services.Comment.ForEdit(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comment": comment,
		"form":    models.CommentForm{Text: comment.Text},
	})
}

// Edit handles POST /edit_comment/:id/
func (h *CommentHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	actor := actorFrom(c)

	id, ok := idParam(c)
	if !ok {
		h.fail(c, service.ErrNotFound, nil)
		return
	}

	// ownership first, so a non-author gets not-found whatever the form holds
	comment, err := h.services.Comment.ForEdit(ctx, actor, id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	var form models.CommentForm
	if fe := h.bind(c, "comment", &form); fe != nil {
		h.fail(c, fe, gin.H{"comment": comment, "form": form})
		return
	}

	updated, err := h.services.Comment.Update(ctx, actor, id, form)
	if err != nil {
		h.fail(c, err, gin.H{"comment": comment, "form": form})
		return
	}

	redirect(c, commentsURL(updated.NewsID))
}

// DeleteConfirm handles GET /delete_comment/:id/
func (h *CommentHandler) DeleteConfirm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.fail(c, service.ErrNotFound, nil)
		return
	}

	comment, err := h.services.Comment.ForDelete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// Delete handles POST /delete_comment/:id/
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.fail(c, service.ErrNotFound, nil)
		return
	}

	comment, err := h.services.Comment.Delete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	redirect(c, commentsURL(comment.NewsID))
}

func commentsURL(newsID int64) string {
	return access.CommentsAnchor(fmt.Sprintf("/news/%d/", newsID))
}
