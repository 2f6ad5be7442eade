package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/config"
	"github.com/news-notes-api/internal/service"
	"github.com/news-notes-api/internal/validation"
	"github.com/rs/zerolog"
)

type loginForm struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Next     string `json:"next" form:"next"`
}

type signupForm struct {
	Username string `json:"username" form:"username" binding:"required,max=150"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthHandler handles login, logout and registration
type AuthHandler struct {
	services *service.Services
	cfg      *config.Config
	*responder
	log zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, cfg *config.Config, r *responder, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services:  services,
		cfg:       cfg,
		responder: r,
		log:       log.With().Str("handler", "auth").Logger(),
	}
}

// LoginForm handles GET /auth/login/
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form": loginForm{},
		"next": access.SafeNext(c.Query("next"), "/"),
	})
}

// Login handles POST /auth/login/ and follows a local next parameter
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if fe := h.bind(c, "login", &form); fe != nil {
		form.Password = ""
		h.fail(c, fe, gin.H{"form": form})
		return
	}

	token, user, err := h.services.Auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fields := validation.FieldErrors{}
			fields.Add("__all__", "Пожалуйста, введите правильные имя пользователя и пароль.")
			err = &service.FormError{Fields: fields}
		}
		form.Password = ""
		h.fail(c, err, gin.H{"form": form})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, int(h.services.Auth.SessionTTL().Seconds()), "/", "", false, true)

	h.log.Info().Str("user_id", user.ID.String()).Msg("Session started")

	next := form.Next
	if next == "" {
		next = c.Query("next")
	}
	redirect(c, access.SafeNext(next, "/"))
}

// Logout handles POST /auth/logout/
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Вы вышли из своей учётной записи."})
}

// Signup handles POST /auth/signup/
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if fe := h.bind(c, "signup", &form); fe != nil {
		form.Password = ""
		h.fail(c, fe, gin.H{"form": form})
		return
	}

	if _, err := h.services.Auth.Signup(c.Request.Context(), form.Username, form.Password); err != nil {
		form.Password = ""
		h.fail(c, err, gin.H{"form": form})
		return
	}

	redirect(c, h.cfg.Auth.LoginURL)
}
