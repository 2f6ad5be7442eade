package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/news-notes-api/internal/config"
	"github.com/news-notes-api/internal/metrics"
	"github.com/news-notes-api/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the router's collaborators other than the services. Every field may be nil.
type Deps struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	DB       HealthChecker
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, deps Deps, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)
	registerFormTagNames()

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(deps.Metrics))
	router.Use(corsMiddleware())
	router.Use(identityMiddleware(services.Auth, cfg.Auth.CookieName, log))

	// Handlers
	r := newResponder(cfg.Auth.LoginURL, deps.Metrics, log)
	newsHandler := NewNewsHandler(services, r, log)
	commentHandler := NewCommentHandler(services, r, log)
	noteHandler := NewNoteHandler(services, r, log)
	authHandler := NewAuthHandler(services, cfg, r, log)
	login := loginRequired(cfg.Auth.LoginURL)

	// Health check
	router.GET("/health", healthCheck(deps.DB))
	router.GET("/metrics", metricsHandler(deps.Gatherer))

	// News and comments
	router.GET("/", newsHandler.Home)
	router.GET("/news/:id/", newsHandler.Detail)
	router.POST("/news/:id/", login, commentHandler.Create)
	router.GET("/edit_comment/:id/", login, commentHandler.EditForm)
	router.POST("/edit_comment/:id/", login, commentHandler.Edit)
	router.GET("/delete_comment/:id/", login, commentHandler.DeleteConfirm)
	router.POST("/delete_comment/:id/", login, commentHandler.Delete)

	// Notes
	notes := router.Group("/", login)
	{
		notes.GET("/notes/", noteHandler.List)
		notes.GET("/add/", noteHandler.AddForm)
		notes.POST("/add/", noteHandler.Add)
		notes.GET("/note/:slug/", noteHandler.Detail)
		notes.GET("/edit/:slug/", noteHandler.EditForm)
		notes.POST("/edit/:slug/", noteHandler.Edit)
		notes.GET("/delete/:slug/", noteHandler.DeleteConfirm)
		notes.POST("/delete/:slug/", noteHandler.Delete)
		notes.GET("/done/", noteHandler.Done)
	}

	// Accounts
	accounts := router.Group("/auth")
	{
		accounts.GET("/login/", authHandler.LoginForm)
		accounts.POST("/login/", loginThrottle(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst), authHandler.Login)
		accounts.POST("/logout/", authHandler.Logout)
		accounts.POST("/signup/", authHandler.Signup)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "news-notes-api",
		})
	}
}

// metricsHandler exposes the Prometheus registry
func metricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("request_id", c.GetString(requestIDKey)).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// metricsMiddleware records request counts and latency per route template
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
