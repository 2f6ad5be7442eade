package api

import (
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/metrics"
	"github.com/news-notes-api/internal/service"
	"github.com/news-notes-api/internal/validation"
	"github.com/rs/zerolog"
)

var tagNamesOnce sync.Once

// registerFormTagNames makes binding errors report the form field name instead of the Go field name
func registerFormTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
	})
}

// responder turns service results into HTTP responses
type responder struct {
	loginURL string
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func newResponder(loginURL string, m *metrics.Metrics, log zerolog.Logger) *responder {
	return &responder{loginURL: loginURL, metrics: m, log: log}
}

// fail maps a service error onto a response. page is the body rendered with a
// rejected form, so the client gets the same document back plus the errors.
func (r *responder) fail(c *gin.Context, err error, page gin.H) {
	var formErr *service.FormError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		redirect(c, access.LoginRedirect(r.loginURL, c.Request.URL.RequestURI()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &formErr):
		body := gin.H{}
		for k, v := range page {
			body[k] = v
		}
		body["errors"] = formErr.Fields
		c.JSON(http.StatusBadRequest, body)
	default:
		r.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bind decodes a submitted form (urlencoded, multipart or JSON) into dst and
// reports binding failures as field errors
func (r *responder) bind(c *gin.Context, name string, dst interface{}) *service.FormError {
	err := c.ShouldBind(dst)
	if err == nil {
		return nil
	}

	fields := validation.FieldErrors{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields.Add(fe.Field(), bindingMessage(fe))
		}
	} else {
		fields.Add("__all__", "Некорректные данные формы.")
	}

	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)
	r.metrics.Rejected(name, names...)

	return &service.FormError{Fields: fields}
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Обязательное поле."
	case "max":
		return "Убедитесь, что это значение содержит не более " + fe.Param() + " символов."
	default:
		return "Введите правильное значение."
	}
}

// redirect answers with 302 Found, the status used after every successful write
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
