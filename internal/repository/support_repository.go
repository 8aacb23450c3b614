package repository

import (
	"context"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// SupportRepository handles per-user support toggles and supporter counts.
// At most one support exists per (exhibit, supporter) pair; the storage
// layer enforces this with a unique constraint, so concurrent toggles
// settle as boolean outcomes rather than errors.
type SupportRepository interface {
	// CountForExhibit returns the number of supports for an exhibit.
	CountForExhibit(ctx context.Context, exhibitID int64) (int64, error)

	// CountByExhibits returns supporter counts for a batch of exhibits,
	// keyed by exhibit ID. Exhibits with no supports are absent from the map.
	CountByExhibits(ctx context.Context, exhibitIDs []int64) (map[int64]int64, error)

	// IsSupporting reports whether the viewer supports the exhibit.
	// A nil viewer is an anonymous request and yields nil, distinguishing
	// "not known" from "known to be false".
	IsSupporting(ctx context.Context, viewer *domain.User, exhibitID int64) (*bool, error)

	// SupportedByViewer returns, for a batch of exhibits, the subset the
	// viewer supports. A nil viewer yields a nil map.
	SupportedByViewer(ctx context.Context, viewer *domain.User, exhibitIDs []int64) (map[int64]bool, error)

	// Support records that supporter supports the exhibit, with an optional
	// survey payload. Returns true if the support was newly created and
	// false if it already existed. The insert is a single atomic conditional
	// statement, so two racing calls produce exactly one row and exactly one
	// true result.
	// Returns domain.ErrNotFound if the exhibit does not exist.
	Support(ctx context.Context, exhibitID int64, supporter string, survey *domain.Survey) (bool, error)

	// Unsupport removes the supporter's support for the exhibit. Returns
	// true if a support existed and was removed, false if there was nothing
	// to remove.
	Unsupport(ctx context.Context, exhibitID int64, supporter string) (bool, error)
}
