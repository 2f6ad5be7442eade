package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/news-notes-api/internal/database"
	"github.com/news-notes-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and fills in its ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO comments (news_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		comment.NewsID, comment.AuthorID, comment.Text, comment.CreatedAt,
	).Scan(&comment.ID)
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT c.id, c.news_id, c.author_id, u.username, c.text, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`

	var comment models.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.NewsID, &comment.AuthorID, &comment.AuthorUsername,
		&comment.Text, &comment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListByNews returns the comments of a news item, oldest first
func (r *commentRepo) ListByNews(ctx context.Context, newsID int64) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.news_id, c.author_id, u.username, c.text, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.news_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, newsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID, &comment.NewsID, &comment.AuthorID, &comment.AuthorUsername,
			&comment.Text, &comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// UpdateText replaces the text of a comment; author and news never change
func (r *commentRepo) UpdateText(ctx context.Context, id int64, text string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE comments SET text = $1 WHERE id = $2`, text, id)
	return err
}

// Delete removes a comment
func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}
