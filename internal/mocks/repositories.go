package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/news-notes-api/internal/models"
	"github.com/news-notes-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.NewsRepository    = (*MockNewsRepository)(nil)
	_ repository.CommentRepository = (*MockCommentRepository)(nil)
	_ repository.NoteRepository    = (*MockNoteRepository)(nil)
)

// NewRepositories wires a full set of mock repositories together
func NewRepositories() (*repository.Repositories, *MockUserRepository, *MockNewsRepository, *MockCommentRepository, *MockNoteRepository) {
	users := NewMockUserRepository()
	comments := NewMockCommentRepository(users)
	news := NewMockNewsRepository(comments)
	notes := NewMockNoteRepository()
	repos := &repository.Repositories{
		User:    users,
		News:    news,
		Comment: comments,
		Note:    notes,
	}
	return repos, users, news, comments, notes
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[uuid.UUID]*models.User
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uuid.UUID]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, u := range m.Users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

func (m *MockUserRepository) username(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		return u.Username
	}
	return ""
}

// MockNewsRepository is a mock implementation of NewsRepository
type MockNewsRepository struct {
	mu               sync.Mutex
	News             map[int64]*models.News
	nextID           int64
	comments         *MockCommentRepository
	InsertError      error
	ListLatestFunc   func(ctx context.Context, limit int) ([]models.News, error)
	BatchInsertCalls int
}

func NewMockNewsRepository(comments *MockCommentRepository) *MockNewsRepository {
	return &MockNewsRepository{
		News:     make(map[int64]*models.News),
		comments: comments,
	}
}

func (m *MockNewsRepository) Create(ctx context.Context, news *models.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.nextID++
	news.ID = m.nextID
	if news.Date.IsZero() {
		news.Date = time.Now().UTC()
	}
	if news.CreatedAt.IsZero() {
		news.CreatedAt = time.Now().UTC()
	}
	stored := *news
	m.News[news.ID] = &stored
	return nil
}

func (m *MockNewsRepository) BatchInsert(ctx context.Context, items []*models.News) (int, error) {
	m.mu.Lock()
	m.BatchInsertCalls++
	m.mu.Unlock()
	for _, n := range items {
		if err := m.Create(ctx, n); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (m *MockNewsRepository) GetByID(ctx context.Context, id int64) (*models.News, error) {
	m.mu.Lock()
	n, ok := m.News[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	copied := *n
	copied.CommentCount = m.commentCount(id)
	return &copied, nil
}

func (m *MockNewsRepository) ListLatest(ctx context.Context, limit int) ([]models.News, error) {
	if m.ListLatestFunc != nil {
		return m.ListLatestFunc(ctx, limit)
	}

	m.mu.Lock()
	items := make([]models.News, 0, len(m.News))
	for _, n := range m.News {
		items = append(items, *n)
	}
	m.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].CommentCount = m.commentCount(items[i].ID)
	}
	return items, nil
}

func (m *MockNewsRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.News), nil
}

func (m *MockNewsRepository) commentCount(newsID int64) int {
	if m.comments == nil {
		return 0
	}
	list, _ := m.comments.ListByNews(context.Background(), newsID)
	return len(list)
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[int64]*models.Comment
	nextID      int64
	users       *MockUserRepository
	InsertError error
	UpdateError error
}

func NewMockCommentRepository(users *MockUserRepository) *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[int64]*models.Comment),
		users:    users,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	m.nextID++
	comment.ID = m.nextID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	stored := *comment
	m.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	m.mu.Lock()
	c, ok := m.Comments[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	copied := *c
	copied.AuthorUsername = m.username(c.AuthorID)
	return &copied, nil
}

// ListByNews returns comments in ID order, leaving time ordering to the caller
func (m *MockCommentRepository) ListByNews(ctx context.Context, newsID int64) ([]models.Comment, error) {
	m.mu.Lock()
	list := []models.Comment{}
	for _, c := range m.Comments {
		if c.NewsID == newsID {
			list = append(list, *c)
		}
	}
	m.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	for i := range list {
		list[i].AuthorUsername = m.username(list[i].AuthorID)
	}
	return list, nil
}

func (m *MockCommentRepository) UpdateText(ctx context.Context, id int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if c, ok := m.Comments[id]; ok {
		c.Text = text
	}
	return nil
}

// SetCreatedAt overrides the creation time of a stored comment
func (m *MockCommentRepository) SetCreatedAt(id int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Comments[id]; ok {
		c.CreatedAt = at
	}
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Comments, id)
	return nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

func (m *MockCommentRepository) username(id uuid.UUID) string {
	if m.users == nil {
		return ""
	}
	return m.users.username(id)
}

// MockNoteRepository is a mock implementation of NoteRepository
type MockNoteRepository struct {
	mu          sync.Mutex
	Notes       map[uuid.UUID]*models.Note
	order       []uuid.UUID
	InsertError error
}

func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{Notes: make(map[uuid.UUID]*models.Note)}
}

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	if m.slugTaken(note.Slug, uuid.Nil) {
		return repository.ErrSlugExists
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now().UTC()
	note.CreatedAt, note.UpdatedAt = now, now
	stored := *note
	m.Notes[note.ID] = &stored
	m.order = append(m.order, note.ID)
	return nil
}

func (m *MockNoteRepository) GetBySlug(ctx context.Context, slug string) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.Notes {
		if n.Slug == slug {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockNoteRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []models.Note{}
	for _, id := range m.order {
		if n, ok := m.Notes[id]; ok && n.AuthorID == authorID {
			list = append(list, *n)
		}
	}
	return list, nil
}

func (m *MockNoteRepository) Update(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Notes[note.ID]
	if !ok {
		return nil
	}
	if m.slugTaken(note.Slug, note.ID) {
		return repository.ErrSlugExists
	}
	note.UpdatedAt = time.Now().UTC()
	stored.Title, stored.Text, stored.Slug, stored.UpdatedAt = note.Title, note.Text, note.Slug, note.UpdatedAt
	return nil
}

func (m *MockNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Notes, id)
	return nil
}

func (m *MockNoteRepository) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(slug, exclude), nil
}

func (m *MockNoteRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notes), nil
}

func (m *MockNoteRepository) slugTaken(slug string, exclude uuid.UUID) bool {
	for id, n := range m.Notes {
		if n.Slug == slug && id != exclude {
			return true
		}
	}
	return false
}
