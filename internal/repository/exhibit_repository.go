package repository

import (
	"context"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// ExhibitRepository handles exhibit persistence, feed pagination, and
// per-actor authorization for mutations.
type ExhibitRepository interface {
	// GetByID retrieves an exhibit by its ID.
	// Returns domain.ErrNotFound if no matching exhibit exists.
	GetByID(ctx context.Context, id int64) (*domain.Exhibit, error)

	// Count returns the total number of exhibits. Feed responses carry this
	// so clients can page through the full collection.
	Count(ctx context.Context) (int64, error)

	// Feed returns one page of exhibits for the given feed ordering,
	// starting at startIdx. At most PageSize rows are returned; a negative
	// startIdx is treated as 0 and a startIdx past the end yields an empty
	// page. Ties are broken by ID so pages never overlap or skip rows.
	Feed(ctx context.Context, feedType domain.FeedType, startIdx int) ([]*domain.Exhibit, error)

	// Create inserts a new exhibit and assigns its ID.
	// Returns domain.ErrInvalidInput if required fields are missing.
	Create(ctx context.Context, exhibit *domain.Exhibit) error

	// Update rewrites the mutable fields of an exhibit (title, description,
	// tags; featured only when the actor is an admin). Author and Created
	// never change.
	// Returns domain.ErrNotFound if no matching exhibit exists and
	// domain.ErrForbidden if the actor is neither the author nor an admin.
	Update(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) error

	// Delete removes an exhibit. Supports, artifacts, and comments attached
	// to it are removed in the same atomic operation.
	// Returns domain.ErrNotFound if no matching exhibit exists and
	// domain.ErrForbidden if the actor is neither the author nor an admin.
	Delete(ctx context.Context, actor *domain.User, id int64) error
}
