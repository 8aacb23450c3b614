package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// Compile-time interface verification.
var _ ArtifactRepository = (*PgArtifactRepository)(nil)

// PgArtifactRepository is a PostgreSQL implementation of ArtifactRepository.
type PgArtifactRepository struct {
	db DBTX
}

// NewPgArtifactRepository creates a new PostgreSQL artifact repository.
func NewPgArtifactRepository(db DBTX) *PgArtifactRepository {
	return &PgArtifactRepository{db: db}
}

// ListForExhibit returns the artifacts attached to an exhibit, oldest first.
func (r *PgArtifactRepository) ListForExhibit(ctx context.Context, exhibitID int64) ([]*domain.Artifact, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, cover, creator, created, exhibit
		FROM artifacts
		WHERE exhibit = $1
		ORDER BY created ASC, id ASC`, exhibitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Cover, &a.Creator, &a.Created, &a.Exhibit); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.Created = a.Created.UTC()
		artifacts = append(artifacts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}

	return artifacts, nil
}

// Create inserts a new artifact and assigns its ID.
func (r *PgArtifactRepository) Create(ctx context.Context, artifact *domain.Artifact) error {
	if artifact == nil {
		return domain.NewValidationError("artifact", "artifact cannot be nil")
	}
	if artifact.Title == "" {
		return domain.NewValidationError("title", "title is required")
	}
	if artifact.Created.IsZero() {
		artifact.Created = time.Now().UTC()
	}

	query := `
		INSERT INTO artifacts (title, description, cover, creator, created, exhibit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		artifact.Title,
		artifact.Description,
		artifact.Cover,
		artifact.Creator,
		artifact.Created,
		artifact.Exhibit,
	).Scan(&artifact.ID)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewNotFoundError("exhibit", strconv.FormatInt(artifact.Exhibit, 10))
		}
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	return nil
}
