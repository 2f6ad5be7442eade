package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/news-notes-api/internal/database"
	"github.com/news-notes-api/internal/models"
)

// newsRepo is the concrete implementation of NewsRepository
type newsRepo struct {
	db *database.DB
}

// NewNewsRepo creates a new news repository
func NewNewsRepo(db *database.DB) NewsRepository {
	return &newsRepo{db: db}
}

// Create inserts a news item and fills in its ID
func (r *newsRepo) Create(ctx context.Context, news *models.News) error {
	prepareNews(news, time.Now().UTC())

	query := `
		INSERT INTO news (title, text, date, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		news.Title, news.Text, news.Date, news.CreatedAt,
	).Scan(&news.ID)
}

// BatchInsert inserts multiple news items using PostgreSQL COPY
func (r *newsRepo) BatchInsert(ctx context.Context, items []*models.News) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("news", "title", "text", "date", "created_at"))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, news := range items {
		prepareNews(news, now)
		if _, err := stmt.ExecContext(ctx, news.Title, news.Text, news.Date, news.CreatedAt); err != nil {
			return 0, err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(items), nil
}

// GetByID retrieves a news item by ID
func (r *newsRepo) GetByID(ctx context.Context, id int64) (*models.News, error) {
	query := `
		SELECT n.id, n.title, n.text, n.date, n.created_at,
			(SELECT COUNT(*) FROM comments c WHERE c.news_id = n.id)
		FROM news n WHERE n.id = $1
	`

	var news models.News
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&news.ID, &news.Title, &news.Text, &news.Date, &news.CreatedAt, &news.CommentCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &news, nil
}

// ListLatest returns the newest news items with their comment counts
func (r *newsRepo) ListLatest(ctx context.Context, limit int) ([]models.News, error) {
	query := `
		SELECT n.id, n.title, n.text, n.date, n.created_at, COUNT(c.id)
		FROM news n
		LEFT JOIN comments c ON c.news_id = n.id
		GROUP BY n.id
		ORDER BY n.date DESC, n.id
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.News{}
	for rows.Next() {
		var news models.News
		if err := rows.Scan(
			&news.ID, &news.Title, &news.Text, &news.Date, &news.CreatedAt, &news.CommentCount,
		); err != nil {
			return nil, err
		}
		items = append(items, news)
	}

	return items, rows.Err()
}

// Count returns the total number of news items
func (r *newsRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM news").Scan(&count)
	return count, err
}

// prepareNews fills defaults: date is today and truncated to a calendar day
func prepareNews(news *models.News, now time.Time) {
	if news.Date.IsZero() {
		news.Date = now
	}
	y, m, d := news.Date.Date()
	news.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if news.CreatedAt.IsZero() {
		news.CreatedAt = now
	}
}
