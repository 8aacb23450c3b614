package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// Compile-time interface verification.
var _ SupportRepository = (*PgSupportRepository)(nil)

// PgSupportRepository is a PostgreSQL implementation of SupportRepository.
type PgSupportRepository struct {
	db DBTX
}

// NewPgSupportRepository creates a new PostgreSQL support repository.
func NewPgSupportRepository(db DBTX) *PgSupportRepository {
	return &PgSupportRepository{db: db}
}

// CountForExhibit returns the number of supports for an exhibit.
func (r *PgSupportRepository) CountForExhibit(ctx context.Context, exhibitID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM supports WHERE exhibit = $1", exhibitID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count supports: %w", err)
	}
	return count, nil
}

// CountByExhibits returns supporter counts for a batch of exhibits.
func (r *PgSupportRepository) CountByExhibits(ctx context.Context, exhibitIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(exhibitIDs))
	if len(exhibitIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT exhibit, COUNT(*)
		FROM supports
		WHERE exhibit = ANY($1)
		GROUP BY exhibit`, exhibitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count supports by exhibit: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var exhibitID, count int64
		if err := rows.Scan(&exhibitID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan support count: %w", err)
		}
		counts[exhibitID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating support counts: %w", err)
	}

	return counts, nil
}

// IsSupporting reports whether the viewer supports the exhibit.
// A nil viewer is anonymous; the answer is unknown rather than false.
func (r *PgSupportRepository) IsSupporting(ctx context.Context, viewer *domain.User, exhibitID int64) (*bool, error) {
	if viewer == nil {
		return nil, nil
	}

	var supporting bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM supports WHERE exhibit = $1 AND supporter = $2)",
		exhibitID, viewer.ID,
	).Scan(&supporting)
	if err != nil {
		return nil, fmt.Errorf("failed to check support: %w", err)
	}

	return &supporting, nil
}

// SupportedByViewer returns, for a batch of exhibits, the subset the viewer supports.
func (r *PgSupportRepository) SupportedByViewer(ctx context.Context, viewer *domain.User, exhibitIDs []int64) (map[int64]bool, error) {
	if viewer == nil {
		return nil, nil
	}

	supported := make(map[int64]bool, len(exhibitIDs))
	if len(exhibitIDs) == 0 {
		return supported, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT exhibit
		FROM supports
		WHERE supporter = $1 AND exhibit = ANY($2)`, viewer.ID, exhibitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query supported exhibits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var exhibitID int64
		if err := rows.Scan(&exhibitID); err != nil {
			return nil, fmt.Errorf("failed to scan supported exhibit: %w", err)
		}
		supported[exhibitID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating supported exhibits: %w", err)
	}

	return supported, nil
}

// Support records that supporter supports the exhibit. The conditional
// insert makes the toggle atomic: under the unique constraint on
// (exhibit, supporter), two racing calls produce exactly one row, and the
// row count tells each caller whether it was the one that created it.
func (r *PgSupportRepository) Support(ctx context.Context, exhibitID int64, supporter string, survey *domain.Survey) (bool, error) {
	if supporter == "" {
		return false, domain.NewValidationError("supporter", "supporter is required")
	}

	var visits, rating *int
	var populationsJSON []byte
	if survey != nil {
		visits = &survey.Visits
		rating = &survey.Rating
		if survey.Populations != nil {
			var err error
			populationsJSON, err = json.Marshal(survey.Populations)
			if err != nil {
				return false, fmt.Errorf("failed to marshal survey populations: %w", err)
			}
		}
	}

	query := `
		INSERT INTO supports (exhibit, supporter, visits, rating, populations, created)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (exhibit, supporter) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		exhibitID, supporter, visits, rating, populationsJSON, time.Now().UTC(),
	)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return false, domain.NewNotFoundError("exhibit", strconv.FormatInt(exhibitID, 10))
		}
		return false, fmt.Errorf("failed to create support: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Unsupport removes the supporter's support for the exhibit.
func (r *PgSupportRepository) Unsupport(ctx context.Context, exhibitID int64, supporter string) (bool, error) {
	if supporter == "" {
		return false, domain.NewValidationError("supporter", "supporter is required")
	}

	tag, err := r.db.Exec(ctx,
		"DELETE FROM supports WHERE exhibit = $1 AND supporter = $2",
		exhibitID, supporter,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove support: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
