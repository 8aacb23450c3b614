package repository

import (
	"context"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// CommentRepository handles visitor comments nested under exhibits.
// Comments are a read-side pass-through on the detail view and are
// cascade-deleted with their exhibit.
type CommentRepository interface {
	// ListForExhibit returns the comments on an exhibit, oldest first.
	ListForExhibit(ctx context.Context, exhibitID int64) ([]*domain.Comment, error)

	// Create inserts a new comment and assigns its ID.
	// Returns domain.ErrNotFound if the exhibit does not exist.
	Create(ctx context.Context, comment *domain.Comment) error
}
