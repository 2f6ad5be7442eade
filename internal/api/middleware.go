package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	requestIDKey    = "request_id"
	userKey         = "user"
	requestIDHeader = "X-Request-ID"
)

// requestIDMiddleware tags each request with an id, reusing one supplied by the client
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// identityMiddleware resolves the session cookie or bearer token into a user.
// Requests without a valid session continue as anonymous.
func identityMiddleware(auth service.AuthService, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("Ignoring invalid session")
			c.Next()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// loginRequired sends anonymous requests to the login page with the original path in next
func loginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).Authenticated() {
			redirect(c, access.LoginRedirect(loginURL, c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// currentUser returns the authenticated user or nil
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// actorFrom returns the access actor of the request
func actorFrom(c *gin.Context) access.Actor {
	if u := currentUser(c); u != nil {
		return access.User(u.ID)
	}
	return access.Anonymous
}
