package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/news-notes-api/internal/models"
	"golang.org/x/text/cases"
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// SlugExistsWarning is appended to a slug that is already taken
const SlugExistsWarning = " - такой slug уже существует, придумайте уникальное значение!"

// FieldErrors maps a form field to the messages attached to it
type FieldErrors map[string][]string

// Add attaches a message to field
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Empty reports whether there are no errors
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// ContentFilter rejects text containing any of the configured words
type ContentFilter struct {
	words   []string
	warning string
}

// NewContentFilter creates a filter for words; warning is the rejection reason
func NewContentFilter(words []string, warning string) *ContentFilter {
	folded := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		folded = append(folded, foldCase(w))
	}
	return &ContentFilter{words: folded, warning: warning}
}

// Validate returns the warning when text contains a disallowed word, case-insensitively
func (f *ContentFilter) Validate(text string) (reason string, ok bool) {
	folded := foldCase(text)
	for _, w := range f.words {
		if strings.Contains(folded, w) {
			return f.warning, false
		}
	}
	return "", true
}

// foldCase builds a fresh Caser per call since a Caser must not be shared between goroutines
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// Validator provides validation methods
type Validator struct {
	filter *ContentFilter
}

// NewValidator creates a new validator instance
func NewValidator(filter *ContentFilter) *Validator {
	return &Validator{filter: filter}
}

// ValidateComment validates a submitted comment
func (v *Validator) ValidateComment(form *models.CommentForm) FieldErrors {
	errors := FieldErrors{}

	if strings.TrimSpace(form.Text) == "" {
		errors.Add("text", "Обязательное поле.")
		return errors
	}

	if v.filter != nil {
		if reason, ok := v.filter.Validate(form.Text); !ok {
			errors.Add("text", reason)
		}
	}

	return errors
}

// ValidateNote validates a submitted note. The slug may be empty, in which
// case the caller derives it from the title.
func (v *Validator) ValidateNote(form *models.NoteForm) FieldErrors {
	errors := FieldErrors{}

	if strings.TrimSpace(form.Title) == "" {
		errors.Add("title", "Обязательное поле.")
	} else if utf8.RuneCountInString(form.Title) > models.MaxNoteTitleLength {
		errors.Add("title", fmt.Sprintf("Убедитесь, что это значение содержит не более %d символов.", models.MaxNoteTitleLength))
	}

	if strings.TrimSpace(form.Text) == "" {
		errors.Add("text", "Обязательное поле.")
	}

	if form.Slug != "" {
		if utf8.RuneCountInString(form.Slug) > models.MaxSlugLength {
			errors.Add("slug", fmt.Sprintf("Убедитесь, что это значение содержит не более %d символов.", models.MaxSlugLength))
		} else if !slugRegex.MatchString(form.Slug) {
			errors.Add("slug", "Значение должно состоять только из латинских букв, цифр, знаков подчеркивания или дефиса.")
		}
	}

	return errors
}

// ValidateNews validates a news record from a seed file
func (v *Validator) ValidateNews(news *models.NewsNDJSON, lineNum int) []models.ValidationError {
	var errors []models.ValidationError

	// Validate title
	if strings.TrimSpace(news.Title) == "" {
		errors = append(errors, models.ValidationError{Line: lineNum, Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(news.Title) > models.MaxNewsTitleLength {
		errors = append(errors, models.ValidationError{
			Line:    lineNum,
			Field:   "title",
			Message: fmt.Sprintf("title exceeds maximum of %d characters", models.MaxNewsTitleLength),
		})
	}

	// Validate text
	if strings.TrimSpace(news.Text) == "" {
		errors = append(errors, models.ValidationError{Line: lineNum, Field: "text", Message: "text is required"})
	}

	// Validate date if present
	if news.Date != "" {
		if _, err := ParseNewsDate(news.Date); err != nil {
			errors = append(errors, models.ValidationError{Line: lineNum, Field: "date", Message: "invalid date format", Value: news.Date})
		}
	}

	return errors
}

// ParseNewsDate accepts a plain date (2006-01-02) or an RFC 3339 timestamp
func ParseNewsDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
