package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// Compile-time interface verification.
var _ CommentRepository = (*PgCommentRepository)(nil)

// PgCommentRepository is a PostgreSQL implementation of CommentRepository.
type PgCommentRepository struct {
	db DBTX
}

// NewPgCommentRepository creates a new PostgreSQL comment repository.
func NewPgCommentRepository(db DBTX) *PgCommentRepository {
	return &PgCommentRepository{db: db}
}

// ListForExhibit returns the comments on an exhibit, oldest first.
func (r *PgCommentRepository) ListForExhibit(ctx context.Context, exhibitID int64) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, text, author, created, exhibit
		FROM comments
		WHERE exhibit = $1
		ORDER BY created ASC, id ASC`, exhibitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.Author, &c.Created, &c.Exhibit); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Created = c.Created.UTC()
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// Create inserts a new comment and assigns its ID.
func (r *PgCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.NewValidationError("comment", "comment cannot be nil")
	}
	if comment.Text == "" {
		return domain.NewValidationError("text", "text is required")
	}
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}

	query := `
		INSERT INTO comments (text, author, created, exhibit)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		comment.Text,
		comment.Author,
		comment.Created,
		comment.Exhibit,
	).Scan(&comment.ID)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewNotFoundError("exhibit", strconv.FormatInt(comment.Exhibit, 10))
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}
