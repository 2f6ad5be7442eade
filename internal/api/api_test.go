package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/news-notes-api/internal/api"
	"github.com/news-notes-api/internal/config"
	"github.com/news-notes-api/internal/metrics"
	"github.com/news-notes-api/internal/mocks"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/service"
	"github.com/news-notes-api/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	loginURL   = "/auth/login/"
	cookieName = "sessionid"
	password   = "s3cret-pass"
	warning    = "Не ругайтесь!"
)

type testEnv struct {
	router   *gin.Engine
	services *service.Services
	news     *mocks.MockNewsRepository
	comments *mocks.MockCommentRepository
	notes    *mocks.MockNoteRepository
}

func setupTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth: config.AuthConfig{
			Secret:     "test-secret-0123456789abcdef0123",
			Issuer:     "test",
			SessionTTL: time.Hour,
			CookieName: cookieName,
			LoginURL:   loginURL,
		},
		News: config.NewsConfig{
			HomePageSize: 10,
			BadWords:     []string{"редиска", "негодяй"},
			Warning:      warning,
		},
		Import: config.ImportConfig{BatchSize: 100},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repos, _, news, comments, notes := mocks.NewRepositories()
	log := zerolog.Nop()
	services := service.NewServices(repos, cfg, m, log)
	router := api.NewRouter(services, cfg, api.Deps{Metrics: m, Gatherer: reg}, log)

	return &testEnv{
		router:   router,
		services: services,
		news:     news,
		comments: comments,
		notes:    notes,
	}
}

// login registers username and returns its session token and id
func (e *testEnv) login(t *testing.T, username string) (string, uuid.UUID) {
	t.Helper()
	if _, err := e.services.Auth.Signup(context.Background(), username, password); err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	token, user, err := e.services.Auth.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return token, user.ID
}

func (e *testEnv) addNews(t *testing.T, title string, date time.Time) *models.News {
	t.Helper()
	n := &models.News{Title: title, Text: "Просто текст.", Date: date}
	if err := e.news.Create(context.Background(), n); err != nil {
		t.Fatalf("create news: %v", err)
	}
	return n
}

func (e *testEnv) addComment(t *testing.T, newsID int64, author uuid.UUID, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{NewsID: newsID, AuthorID: author, Text: text}
	if err := e.comments.Create(context.Background(), c); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func (e *testEnv) addNote(t *testing.T, author uuid.UUID, slug string) *models.Note {
	t.Helper()
	n := &models.Note{Title: "Заголовок", Text: "Текст заметки", Slug: slug, AuthorID: author}
	if err := e.notes.Create(context.Background(), n); err != nil {
		t.Fatalf("create note: %v", err)
	}
	return n
}

func (e *testEnv) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return e.do(req, token)
}

func (e *testEnv) post(path string, values url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, token)
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) commentCount(t *testing.T) int {
	t.Helper()
	n, _ := e.comments.Count(context.Background())
	return n
}

func (e *testEnv) noteCount(t *testing.T) int {
	t.Helper()
	n, _ := e.notes.Count(context.Background())
	return n
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode errors %q: %v", w.Body.String(), err)
	}
	return body.Errors
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get("/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode health response: %v", err)
	}

	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "news-notes-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	env.get("/", "")

	w := env.get("/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `news_notes_http_requests_total{method="GET",route="/",status="200"} 1`) {
		t.Errorf("Expected home request to be counted, got:\n%s", w.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := env.do(req, "")

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for OPTIONS, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin '*', got '%s'", got)
	}
}

func TestPublicPagesAvailableToAnonymous(t *testing.T) {
	env := setupTestEnv(t)
	news := env.addNews(t, "Новость", time.Now().UTC())

	for _, path := range []string{"/", fmt.Sprintf("/news/%d/", news.ID), "/auth/login/"} {
		t.Run(path, func(t *testing.T) {
			if w := env.get(path, ""); w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
		})
	}
}

func TestHome_CountAndOrder(t *testing.T) {
	env := setupTestEnv(t)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < 11; i++ {
		env.addNews(t, fmt.Sprintf("Новость %d", i), today.AddDate(0, 0, -i))
	}

	w := env.get("/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		News []models.News `json:"news"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(response.News) != 10 {
		t.Fatalf("Expected 10 news on the home page, got %d", len(response.News))
	}
	for i := 1; i < len(response.News); i++ {
		if response.News[i].Date.After(response.News[i-1].Date) {
			t.Errorf("News %d is newer than news %d", i, i-1)
		}
	}
}

func TestNewsDetail_CommentsOrder(t *testing.T) {
	env := setupTestEnv(t)
	_, author := env.login(t, "author")
	news := env.addNews(t, "Новость", time.Now().UTC())

	start := time.Now().UTC()
	for i := 0; i < 10; i++ {
		c := env.addComment(t, news.ID, author, fmt.Sprintf("Комментарий %d", i))
		env.comments.SetCreatedAt(c.ID, start.Add(time.Duration(10-i)*time.Hour))
	}

	w := env.get(fmt.Sprintf("/news/%d/", news.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Comments []models.Comment `json:"comments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(response.Comments) != 10 {
		t.Fatalf("Expected 10 comments, got %d", len(response.Comments))
	}
	for i := 1; i < len(response.Comments); i++ {
		if !response.Comments[i-1].CreatedAt.Before(response.Comments[i].CreatedAt) {
			t.Errorf("Comment %d is not older than comment %d", i-1, i)
		}
	}
}

func TestNewsDetail_FormOnlyForAuthenticated(t *testing.T) {
	env := setupTestEnv(t)
	token, _ := env.login(t, "reader")
	news := env.addNews(t, "Новость", time.Now().UTC())
	path := fmt.Sprintf("/news/%d/", news.ID)

	if _, ok := decode(t, env.get(path, ""))["form"]; ok {
		t.Error("Anonymous user should not get a comment form")
	}
	if _, ok := decode(t, env.get(path, token))["form"]; !ok {
		t.Error("Authenticated user should get a comment form")
	}
}

func TestNewsDetail_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	for _, path := range []string{"/news/999/", "/news/abc/"} {
		if w := env.get(path, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", path, w.Code)
		}
	}
}

func TestCreateComment_Anonymous(t *testing.T) {
	env := setupTestEnv(t)
	news := env.addNews(t, "Новость", time.Now().UTC())
	path := fmt.Sprintf("/news/%d/", news.ID)

	w := env.post(path, url.Values{"text": {"Текст комментария"}}, "")

	expectRedirect(t, w, loginURL+"?next="+path)
	if n := env.commentCount(t); n != 0 {
		t.Errorf("Expected no comments, got %d", n)
	}
}

func TestCreateComment_Authenticated(t *testing.T) {
	env := setupTestEnv(t)
	token, author := env.login(t, "author")
	news := env.addNews(t, "Новость", time.Now().UTC())
	path := fmt.Sprintf("/news/%d/", news.ID)

	w := env.post(path, url.Values{"text": {"Текст комментария"}}, token)

	expectRedirect(t, w, path+"#comments")
	if n := env.commentCount(t); n != 1 {
		t.Fatalf("Expected 1 comment, got %d", n)
	}
	comment, _ := env.comments.GetByID(context.Background(), 1)
	if comment.Text != "Текст комментария" || comment.NewsID != news.ID || comment.AuthorID != author {
		t.Errorf("Unexpected comment stored: %+v", comment)
	}
}

func TestCreateComment_BadWords(t *testing.T) {
	env := setupTestEnv(t)
	token, _ := env.login(t, "author")
	news := env.addNews(t, "Новость", time.Now().UTC())

	for _, word := range []string{"редиска", "НЕГОДЯЙ"} {
		t.Run(word, func(t *testing.T) {
			text := fmt.Sprintf("Какой-то текст, %s, еще текст", word)
			w := env.post(fmt.Sprintf("/news/%d/", news.ID), url.Values{"text": {text}}, token)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
			errs := fieldErrors(t, w)
			if len(errs["text"]) != 1 || errs["text"][0] != warning {
				t.Errorf("Expected text error %q, got %v", warning, errs)
			}
			if _, ok := decode(t, w)["form"]; !ok {
				t.Error("Expected the rejected form in the response")
			}
			if n := env.commentCount(t); n != 0 {
				t.Errorf("Expected no comments, got %d", n)
			}
		})
	}
}

func TestCreateComment_EmptyText(t *testing.T) {
	env := setupTestEnv(t)
	token, _ := env.login(t, "author")
	news := env.addNews(t, "Новость", time.Now().UTC())

	w := env.post(fmt.Sprintf("/news/%d/", news.ID), url.Values{}, token)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if errs := fieldErrors(t, w); len(errs["text"]) == 0 {
		t.Errorf("Expected an error on text, got %v", errs)
	}
}

func TestCommentPages_Availability(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	news := env.addNews(t, "Новость", time.Now().UTC())
	comment := env.addComment(t, news.ID, author, "Текст")

	for _, prefix := range []string{"/edit_comment/", "/delete_comment/"} {
		path := fmt.Sprintf("%s%d/", prefix, comment.ID)
		t.Run(path, func(t *testing.T) {
			if w := env.get(path, authorToken); w.Code != http.StatusOK {
				t.Errorf("author: expected status 200, got %d", w.Code)
			}
			if w := env.get(path, readerToken); w.Code != http.StatusNotFound {
				t.Errorf("reader: expected status 404, got %d", w.Code)
			}
			expectRedirect(t, env.get(path, ""), loginURL+"?next="+path)
		})
	}
}

func TestEditComment(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	news := env.addNews(t, "Новость", time.Now().UTC())
	comment := env.addComment(t, news.ID, author, "Текст комментария")
	path := fmt.Sprintf("/edit_comment/%d/", comment.ID)
	form := url.Values{"text": {"Обновлённый комментарий"}}

	w := env.post(path, form, readerToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for another user, got %d", w.Code)
	}
	stored, _ := env.comments.GetByID(context.Background(), comment.ID)
	if stored.Text != "Текст комментария" {
		t.Errorf("Comment changed by another user: %q", stored.Text)
	}

	w = env.post(path, form, authorToken)
	expectRedirect(t, w, fmt.Sprintf("/news/%d/#comments", news.ID))
	stored, _ = env.comments.GetByID(context.Background(), comment.ID)
	if stored.Text != "Обновлённый комментарий" {
		t.Errorf("Expected updated text, got %q", stored.Text)
	}
	if stored.AuthorID != author || stored.NewsID != news.ID {
		t.Errorf("Author or news changed on edit: %+v", stored)
	}
}

func TestDeleteComment(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	news := env.addNews(t, "Новость", time.Now().UTC())
	comment := env.addComment(t, news.ID, author, "Текст")
	path := fmt.Sprintf("/delete_comment/%d/", comment.ID)

	if w := env.post(path, nil, readerToken); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for another user, got %d", w.Code)
	}
	if n := env.commentCount(t); n != 1 {
		t.Fatalf("Expected comment to survive, got %d comments", n)
	}

	expectRedirect(t, env.post(path, nil, authorToken), fmt.Sprintf("/news/%d/#comments", news.ID))
	if n := env.commentCount(t); n != 0 {
		t.Errorf("Expected comment to be deleted, got %d comments", n)
	}
}

func TestNotePages_RedirectAnonymous(t *testing.T) {
	env := setupTestEnv(t)
	_, author := env.login(t, "author")
	env.addNote(t, author, "note-slug")

	paths := []string{"/notes/", "/add/", "/done/", "/note/note-slug/", "/edit/note-slug/", "/delete/note-slug/"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			expectRedirect(t, env.get(path, ""), loginURL+"?next="+path)
		})
	}
}

func TestNotePages_Availability(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	env.addNote(t, author, "note-slug")

	for _, path := range []string{"/notes/", "/add/", "/done/"} {
		if w := env.get(path, readerToken); w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}

	for _, path := range []string{"/note/note-slug/", "/edit/note-slug/", "/delete/note-slug/"} {
		t.Run(path, func(t *testing.T) {
			if w := env.get(path, authorToken); w.Code != http.StatusOK {
				t.Errorf("author: expected status 200, got %d", w.Code)
			}
			if w := env.get(path, readerToken); w.Code != http.StatusNotFound {
				t.Errorf("reader: expected status 404, got %d", w.Code)
			}
		})
	}
}

func TestNotesList_OnlyOwnNotes(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	env.addNote(t, author, "note-slug")

	var response struct {
		Notes []models.Note `json:"notes"`
	}

	if err := json.Unmarshal(env.get("/notes/", authorToken).Body.Bytes(), &response); err != nil {
		t.Fatalf("decode author notes: %v", err)
	}
	if len(response.Notes) != 1 || response.Notes[0].Slug != "note-slug" {
		t.Errorf("Expected author to see their note, got %+v", response.Notes)
	}

	response.Notes = nil
	w := env.get("/notes/", readerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for reader, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode reader notes: %v", err)
	}
	if len(response.Notes) != 0 {
		t.Errorf("Expected reader to see no notes, got %+v", response.Notes)
	}
}

func TestNotePages_ContainForm(t *testing.T) {
	env := setupTestEnv(t)
	token, author := env.login(t, "author")
	env.addNote(t, author, "note-slug")

	for _, path := range []string{"/add/", "/edit/note-slug/"} {
		if _, ok := decode(t, env.get(path, token))["form"]; !ok {
			t.Errorf("%s: expected a form", path)
		}
	}
}

func TestCreateNote(t *testing.T) {
	env := setupTestEnv(t)
	token, author := env.login(t, "author")
	form := url.Values{"title": {"Новый заголовок"}, "text": {"Новый текст"}, "slug": {"new-slug"}}

	expectRedirect(t, env.post("/add/", form, ""), loginURL+"?next=/add/")
	if n := env.noteCount(t); n != 0 {
		t.Fatalf("Anonymous user created a note")
	}

	expectRedirect(t, env.post("/add/", form, token), "/done/")
	note, _ := env.notes.GetBySlug(context.Background(), "new-slug")
	if note == nil {
		t.Fatal("Expected note to be stored")
	}
	if note.Title != "Новый заголовок" || note.Text != "Новый текст" || note.AuthorID != author {
		t.Errorf("Unexpected note stored: %+v", note)
	}
}

func TestCreateNote_DuplicateSlug(t *testing.T) {
	env := setupTestEnv(t)
	token, author := env.login(t, "author")
	existing := env.addNote(t, author, "note-slug")

	w := env.post("/add/", url.Values{"title": {"Другой"}, "text": {"Текст"}, "slug": {"note-slug"}}, token)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	want := "note-slug" + validation.SlugExistsWarning
	if errs := fieldErrors(t, w); len(errs["slug"]) != 1 || errs["slug"][0] != want {
		t.Errorf("Expected slug error %q, got %v", want, errs)
	}
	if n := env.noteCount(t); n != 1 {
		t.Errorf("Expected 1 note, got %d", n)
	}
	stored, _ := env.notes.GetBySlug(context.Background(), "note-slug")
	if stored.ID != existing.ID || stored.Title != existing.Title {
		t.Errorf("Existing note was modified: %+v", stored)
	}
}

func TestCreateNote_EmptySlug(t *testing.T) {
	env := setupTestEnv(t)
	token, _ := env.login(t, "author")

	expectRedirect(t, env.post("/add/", url.Values{"title": {"Новый заголовок"}, "text": {"Текст"}}, token), "/done/")

	slug := validation.Slugify("Новый заголовок")
	if note, _ := env.notes.GetBySlug(context.Background(), slug); note == nil {
		t.Errorf("Expected a note with slug %q", slug)
	}
}

func TestEditNote(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	note := env.addNote(t, author, "note-slug")
	form := url.Values{"title": {"Новый заголовок"}, "text": {"Новый текст"}, "slug": {"new-slug"}}

	if w := env.post("/edit/note-slug/", form, readerToken); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for another user, got %d", w.Code)
	}
	stored, _ := env.notes.GetBySlug(context.Background(), "note-slug")
	if stored == nil || stored.Title != note.Title {
		t.Fatalf("Note changed by another user: %+v", stored)
	}

	expectRedirect(t, env.post("/edit/note-slug/", form, authorToken), "/done/")
	stored, _ = env.notes.GetBySlug(context.Background(), "new-slug")
	if stored == nil || stored.Title != "Новый заголовок" || stored.Text != "Новый текст" {
		t.Errorf("Expected note to be updated, got %+v", stored)
	}
}

func TestDeleteNote(t *testing.T) {
	env := setupTestEnv(t)
	authorToken, author := env.login(t, "author")
	readerToken, _ := env.login(t, "reader")
	env.addNote(t, author, "note-slug")

	if w := env.post("/delete/note-slug/", nil, readerToken); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for another user, got %d", w.Code)
	}
	if n := env.noteCount(t); n != 1 {
		t.Fatalf("Expected note to survive, got %d notes", n)
	}

	expectRedirect(t, env.post("/delete/note-slug/", nil, authorToken), "/done/")
	if n := env.noteCount(t); n != 0 {
		t.Errorf("Expected note to be deleted, got %d notes", n)
	}
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t, "author")

	w := env.post(loginURL, url.Values{"username": {"author"}, "password": {"wrong"}}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for bad credentials, got %d", w.Code)
	}
	if errs := fieldErrors(t, w); len(errs["__all__"]) == 0 {
		t.Errorf("Expected a form-level error, got %v", errs)
	}

	w = env.post(loginURL, url.Values{"username": {"author"}, "password": {password}, "next": {"/notes/"}}, "")
	expectRedirect(t, w, "/notes/")

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("Expected a session cookie")
	}
	if got := env.get("/notes/", session.Value); got.Code != http.StatusOK {
		t.Errorf("Expected the session cookie to authenticate, got %d", got.Code)
	}
}

func TestLogin_RejectsExternalNext(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t, "author")

	w := env.post(loginURL, url.Values{"username": {"author"}, "password": {password}, "next": {"https://evil.example/"}}, "")
	expectRedirect(t, w, "/")
}

func TestBearerToken(t *testing.T) {
	env := setupTestEnv(t)
	token, _ := env.login(t, "author")

	req := httptest.NewRequest(http.MethodGet, "/notes/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if w := env.do(req, ""); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with bearer token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	expectRedirect(t, env.do(req, ""), loginURL+"?next=/notes/")
}

func TestSignup(t *testing.T) {
	env := setupTestEnv(t)

	expectRedirect(t, env.post("/auth/signup/", url.Values{"username": {"newbie"}, "password": {password}}, ""), loginURL)

	w := env.post("/auth/signup/", url.Values{"username": {"newbie"}, "password": {password}}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for a taken username, got %d", w.Code)
	}
	if errs := fieldErrors(t, w); len(errs["username"]) == 0 {
		t.Errorf("Expected a username error, got %v", errs)
	}
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)

	w := env.post("/auth/logout/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected the session cookie to be cleared")
	}
}

func TestLogin_Throttled(t *testing.T) {
	env := setupTestEnv(t, func(cfg *config.Config) {
		cfg.Auth.LoginRatePerMinute = 1
		cfg.Auth.LoginBurst = 2
	})
	env.login(t, "author")
	form := url.Values{"username": {"author"}, "password": {"wrong"}}

	for i := 0; i < 2; i++ {
		if w := env.post(loginURL, form, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected status 400, got %d", i+1, w.Code)
		}
	}
	if w := env.post(loginURL, form, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 once the burst is spent, got %d", w.Code)
	}
}

func loginFrom(env *testEnv, form url.Values, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	return env.do(req, "")
}

func TestLogin_ThrottleIgnoresForwardedForFromUntrustedClient(t *testing.T) {
	env := setupTestEnv(t, func(cfg *config.Config) {
		cfg.Auth.LoginRatePerMinute = 1
		cfg.Auth.LoginBurst = 2
	})
	env.login(t, "author")
	form := url.Values{"username": {"author"}, "password": {"wrong"}}

	codes := make(map[int]int)
	for i := 0; i < 20; i++ {
		codes[loginFrom(env, form, fmt.Sprintf("10.0.0.%d", i)).Code]++
	}
	if codes[http.StatusBadRequest] != 2 || codes[http.StatusTooManyRequests] != 18 {
		t.Errorf("Expected 2 attempts then 429s, got %v", codes)
	}
}

func TestLogin_ThrottleUsesForwardedForFromTrustedProxy(t *testing.T) {
	env := setupTestEnv(t, func(cfg *config.Config) {
		cfg.Server.TrustedProxies = []string{"192.0.2.0/24"}
		cfg.Auth.LoginRatePerMinute = 1
		cfg.Auth.LoginBurst = 1
	})
	env.login(t, "author")
	form := url.Values{"username": {"author"}, "password": {"wrong"}}

	// httptest requests come from 192.0.2.1
	if w := loginFrom(env, form, "10.0.0.1"); w.Code != http.StatusBadRequest {
		t.Fatalf("first client: expected status 400, got %d", w.Code)
	}
	if w := loginFrom(env, form, "10.0.0.2"); w.Code != http.StatusBadRequest {
		t.Errorf("second client: expected status 400, got %d", w.Code)
	}
	if w := loginFrom(env, form, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("first client again: expected status 429, got %d", w.Code)
	}
}
