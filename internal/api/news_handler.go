package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/service"
	"github.com/rs/zerolog"
)

// NewsHandler handles the public news pages
type NewsHandler struct {
	services *service.Services
	*responder
	log zerolog.Logger
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(services *service.Services, r *responder, log zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		services:  services,
		responder: r,
		log:       log.With().Str("handler", "news").Logger(),
	}
}

// Home handles GET /
func (h *NewsHandler) Home(c *gin.Context) {
	items, err := h.services.News.Home(c.Request.Context())
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": items})
}

// Detail handles GET /news/:id/
func (h *NewsHandler) Detail(c *gin.Context) {
	page, err := h.detailPage(c)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, page)
}

// detailPage builds the news page; the comment form is offered only to logged in users
func (h *NewsHandler) detailPage(c *gin.Context) (gin.H, error) {
	id, ok := idParam(c)
	if !ok {
		return nil, service.ErrNotFound
	}

	detail, err := h.services.News.Detail(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	page := gin.H{
		"news":     detail.News,
		"comments": detail.Comments,
	}
	if actorFrom(c).Authenticated() {
		page["form"] = models.CommentForm{}
	}
	return page, nil
}

// idParam parses the numeric :id route parameter
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
