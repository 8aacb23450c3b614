package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// Compile-time interface verification.
var _ ExhibitRepository = (*PgExhibitRepository)(nil)

// exhibitColumns is the canonical column list for exhibit queries.
const exhibitColumns = "id, title, description, author, created, tags, featured"

// PgExhibitRepository is a PostgreSQL implementation of ExhibitRepository.
type PgExhibitRepository struct {
	db DBTX
}

// NewPgExhibitRepository creates a new PostgreSQL exhibit repository.
func NewPgExhibitRepository(db DBTX) *PgExhibitRepository {
	return &PgExhibitRepository{db: db}
}

// GetByID retrieves an exhibit by its ID.
func (r *PgExhibitRepository) GetByID(ctx context.Context, id int64) (*domain.Exhibit, error) {
	query := `
		SELECT ` + exhibitColumns + `
		FROM exhibits
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	exhibit, err := scanExhibit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("exhibit", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to get exhibit: %w", err)
	}

	return exhibit, nil
}

// Count returns the total number of exhibits.
func (r *PgExhibitRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM exhibits").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count exhibits: %w", err)
	}
	return count, nil
}

// Feed returns one page of exhibits for the given feed ordering.
// The ID tiebreaker keeps the ordering total, so consecutive pages never
// overlap or skip rows even when exhibits share a creation instant or title.
func (r *PgExhibitRepository) Feed(ctx context.Context, feedType domain.FeedType, startIdx int) ([]*domain.Exhibit, error) {
	if startIdx < 0 {
		startIdx = 0
	}

	var orderBy string
	switch feedType {
	case domain.FeedTypeNew:
		orderBy = "created DESC, id DESC"
	case domain.FeedTypeAlphabetical:
		orderBy = "lower(title) ASC, id ASC"
	default:
		return nil, domain.NewValidationError("feed_type", fmt.Sprintf("unknown feed type: %s", feedType))
	}

	query := fmt.Sprintf(`
		SELECT `+exhibitColumns+`
		FROM exhibits
		ORDER BY %s
		LIMIT $1 OFFSET $2`, orderBy)

	rows, err := r.db.Query(ctx, query, PageSize, startIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	exhibits := make([]*domain.Exhibit, 0, PageSize)
	for rows.Next() {
		exhibit, err := scanExhibitFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exhibit: %w", err)
		}
		exhibits = append(exhibits, exhibit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed: %w", err)
	}

	return exhibits, nil
}

// Create inserts a new exhibit and assigns its ID.
func (r *PgExhibitRepository) Create(ctx context.Context, exhibit *domain.Exhibit) error {
	if exhibit == nil {
		return domain.NewValidationError("exhibit", "exhibit cannot be nil")
	}
	if err := exhibit.ValidateForWrite(); err != nil {
		return err
	}
	if exhibit.Author == "" {
		return domain.NewValidationError("author", "author is required")
	}
	if exhibit.Created.IsZero() {
		exhibit.Created = time.Now().UTC()
	}

	query := `
		INSERT INTO exhibits (title, description, author, created, tags, featured)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		exhibit.Title,
		exhibit.Description,
		exhibit.Author,
		exhibit.Created,
		exhibit.Tags,
		exhibit.Featured,
	).Scan(&exhibit.ID)
	if err != nil {
		return fmt.Errorf("failed to create exhibit: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of an exhibit after checking that the
// actor is the author or an admin. The check and the write happen under a
// row lock so a concurrent author change cannot slip between them. Callers
// must run Update inside a transaction (database.DB.WithTransaction) for
// the lock to be meaningful.
func (r *PgExhibitRepository) Update(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) error {
	if exhibit == nil {
		return domain.NewValidationError("exhibit", "exhibit cannot be nil")
	}
	if err := exhibit.ValidateForWrite(); err != nil {
		return err
	}
	if actor == nil {
		return domain.ErrUnauthorized
	}
	current, err := r.lockExhibit(ctx, exhibit.ID)
	if err != nil {
		return err
	}

	if !actor.Admin && actor.ID != current.Author {
		return domain.NewForbiddenError(actor.ID, "edit", "exhibit", strconv.FormatInt(exhibit.ID, 10))
	}

	// Only admins may change the featured flag.
	featured := current.Featured
	if actor.Admin {
		featured = exhibit.Featured
	}

	query := `
		UPDATE exhibits
		SET title = $1, description = $2, tags = $3, featured = $4
		WHERE id = $5`

	if _, err := r.db.Exec(ctx, query,
		exhibit.Title,
		exhibit.Description,
		exhibit.Tags,
		featured,
		exhibit.ID,
	); err != nil {
		return fmt.Errorf("failed to update exhibit: %w", err)
	}

	// Reflect the immutable fields back to the caller.
	exhibit.Author = current.Author
	exhibit.Created = current.Created
	exhibit.Featured = featured

	return nil
}

// Delete removes an exhibit after checking that the actor is the author or
// an admin. Supports, artifacts, and comments cascade with the row. Like
// Update, Delete must run inside a transaction.
func (r *PgExhibitRepository) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	current, err := r.lockExhibit(ctx, id)
	if err != nil {
		return err
	}

	if !actor.Admin && actor.ID != current.Author {
		return domain.NewForbiddenError(actor.ID, "delete", "exhibit", strconv.FormatInt(id, 10))
	}

	if _, err := r.db.Exec(ctx, "DELETE FROM exhibits WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete exhibit: %w", err)
	}

	return nil
}

// lockExhibit reads an exhibit under FOR UPDATE, returning NotFound if it
// does not exist.
func (r *PgExhibitRepository) lockExhibit(ctx context.Context, id int64) (*domain.Exhibit, error) {
	query := `
		SELECT ` + exhibitColumns + `
		FROM exhibits
		WHERE id = $1
		FOR UPDATE`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock exhibit: %w", err)
	}

	exhibit, err := scanExhibitRows(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("exhibit", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to scan exhibit: %w", err)
	}

	return exhibit, nil
}

// exhibitDestinations returns the slice of pointers for Scan operations,
// matching exhibitColumns.
func exhibitDestinations(e *domain.Exhibit) []interface{} {
	return []interface{}{
		&e.ID, &e.Title, &e.Description, &e.Author, &e.Created, &e.Tags, &e.Featured,
	}
}

// scanExhibit scans a single row into an Exhibit.
func scanExhibit(row pgx.Row) (*domain.Exhibit, error) {
	var exhibit domain.Exhibit
	if err := row.Scan(exhibitDestinations(&exhibit)...); err != nil {
		return nil, err
	}
	exhibit.Created = exhibit.Created.UTC()
	return &exhibit, nil
}

// scanExhibitRows scans a single row from pgx.Rows into an Exhibit.
// Used with SELECT FOR UPDATE which returns Rows instead of Row.
func scanExhibitRows(rows pgx.Rows) (*domain.Exhibit, error) {
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	return scanExhibitFromRows(rows)
}

// scanExhibitFromRows scans the current row from pgx.Rows into an Exhibit.
func scanExhibitFromRows(rows pgx.Rows) (*domain.Exhibit, error) {
	var exhibit domain.Exhibit
	if err := rows.Scan(exhibitDestinations(&exhibit)...); err != nil {
		return nil, err
	}
	exhibit.Created = exhibit.Created.UTC()
	return &exhibit, nil
}
