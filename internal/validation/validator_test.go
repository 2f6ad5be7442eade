package validation

import (
	"strings"
	"testing"

	"github.com/news-notes-api/internal/models"
)

var badWords = []string{"редиска", "негодяй"}

const warning = "Не ругайтесь!"

func TestContentFilter(t *testing.T) {
	filter := NewContentFilter(badWords, warning)

	tests := []struct {
		name   string
		text   string
		wantOK bool
	}{
		{name: "clean text", text: "Новый текст комментария", wantOK: true},
		{name: "bad word in the middle", text: "Какой-то text, редиска, еще text", wantOK: false},
		{name: "bad word capitalised", text: "НЕГОДЯЙ!", wantOK: false},
		{name: "bad word mixed case", text: "ты РеДиСкА", wantOK: false},
		{name: "bad word as substring", text: "редисками", wantOK: false},
		{name: "empty text", text: "", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := filter.Validate(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Validate(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok && reason != warning {
				t.Errorf("Expected reason %q, got %q", warning, reason)
			}
		})
	}
}

func TestContentFilter_IgnoresBlankWords(t *testing.T) {
	filter := NewContentFilter([]string{"", "  "}, warning)
	if _, ok := filter.Validate("anything at all"); !ok {
		t.Error("Blank words must not reject every text")
	}
}

func TestValidateComment(t *testing.T) {
	validator := NewValidator(NewContentFilter(badWords, warning))

	tests := []struct {
		name       string
		text       string
		wantFields []string
	}{
		{name: "valid comment", text: "Отличная новость"},
		{name: "empty text", text: "   ", wantFields: []string{"text"}},
		{name: "bad word", text: "Какой-то text, негодяй, еще text", wantFields: []string{"text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.ValidateComment(&models.CommentForm{Text: tt.text})
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d error fields, got %v", len(tt.wantFields), errs)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("Expected error on field %q, got %v", f, errs)
				}
			}
		})
	}
}

func TestValidateComment_RejectionCarriesWarning(t *testing.T) {
	validator := NewValidator(NewContentFilter(badWords, warning))

	errs := validator.ValidateComment(&models.CommentForm{Text: "редиска"})
	if len(errs["text"]) != 1 || errs["text"][0] != warning {
		t.Errorf("Expected text error %q, got %v", warning, errs)
	}
}

func TestValidateNote(t *testing.T) {
	validator := NewValidator(nil)

	tests := []struct {
		name       string
		form       models.NoteForm
		wantFields []string
	}{
		{
			name: "valid with slug",
			form: models.NoteForm{Title: "Заголовок", Text: "Текст", Slug: "note-slug"},
		},
		{
			name: "valid without slug",
			form: models.NoteForm{Title: "Заголовок", Text: "Текст"},
		},
		{
			name:       "missing title and text",
			form:       models.NoteForm{},
			wantFields: []string{"title", "text"},
		},
		{
			name:       "title too long",
			form:       models.NoteForm{Title: strings.Repeat("я", models.MaxNoteTitleLength+1), Text: "t"},
			wantFields: []string{"title"},
		},
		{
			name:       "slug with spaces",
			form:       models.NoteForm{Title: "t", Text: "t", Slug: "not a slug"},
			wantFields: []string{"slug"},
		},
		{
			name:       "slug too long",
			form:       models.NoteForm{Title: "t", Text: "t", Slug: strings.Repeat("a", models.MaxSlugLength+1)},
			wantFields: []string{"slug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.ValidateNote(&tt.form)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d error fields, got %v", len(tt.wantFields), errs)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("Expected error on field %q, got %v", f, errs)
				}
			}
		})
	}
}

func TestValidateNews(t *testing.T) {
	validator := NewValidator(nil)

	tests := []struct {
		name       string
		news       models.NewsNDJSON
		wantFields []string
	}{
		{name: "valid with plain date", news: models.NewsNDJSON{Title: "T", Text: "X", Date: "2024-01-31"}},
		{name: "valid with timestamp", news: models.NewsNDJSON{Title: "T", Text: "X", Date: "2024-01-31T10:00:00Z"}},
		{name: "valid without date", news: models.NewsNDJSON{Title: "T", Text: "X"}},
		{name: "missing title", news: models.NewsNDJSON{Text: "X"}, wantFields: []string{"title"}},
		{name: "missing text", news: models.NewsNDJSON{Title: "T"}, wantFields: []string{"text"}},
		{name: "bad date", news: models.NewsNDJSON{Title: "T", Text: "X", Date: "31/01/2024"}, wantFields: []string{"date"}},
		{
			name:       "title too long",
			news:       models.NewsNDJSON{Title: strings.Repeat("x", models.MaxNewsTitleLength+1), Text: "X"},
			wantFields: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validator.ValidateNews(&tt.news, 7)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %v", len(tt.wantFields), errs)
			}
			for i, f := range tt.wantFields {
				if errs[i].Field != f {
					t.Errorf("Expected error on %q, got %q", f, errs[i].Field)
				}
				if errs[i].Line != 7 {
					t.Errorf("Expected line 7, got %d", errs[i].Line)
				}
			}
		})
	}
}

func TestParseNewsDate_TruncatesTimestamp(t *testing.T) {
	d, err := ParseNewsDate("2024-03-05T23:59:00Z")
	if err != nil {
		t.Fatalf("ParseNewsDate failed: %v", err)
	}
	if d.Hour() != 0 || d.Day() != 5 {
		t.Errorf("Expected midnight of the 5th, got %v", d)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Заголовок", "zagolovok"},
		{"Лев Толстой", "lev-tolstoj"},
		{"Hello, World!", "hello-world"},
		{"  Crème   brûlée  ", "creme-brulee"},
		{"already-a-slug", "already-a-slug"},
		{"snake_case title", "snake_case-title"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("ab ", 80))
	if len(got) > models.MaxSlugLength {
		t.Errorf("Slug length %d exceeds %d", len(got), models.MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Slug must not end with a hyphen: %q", got)
	}
}
