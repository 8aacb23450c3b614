package repository

import (
	"context"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// ArtifactRepository handles artifacts nested under exhibits. Artifacts
// never outlive their exhibit; the schema cascade-deletes them.
type ArtifactRepository interface {
	// ListForExhibit returns the artifacts attached to an exhibit,
	// oldest first.
	ListForExhibit(ctx context.Context, exhibitID int64) ([]*domain.Artifact, error)

	// Create inserts a new artifact and assigns its ID.
	// Returns domain.ErrNotFound if the exhibit does not exist.
	Create(ctx context.Context, artifact *domain.Artifact) error
}
