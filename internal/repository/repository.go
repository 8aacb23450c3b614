// Package repository provides data access interfaces and implementations
// for the exhibit service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL
// implementations following the repository pattern to abstract data
// persistence from business logic.
//
//   - ExhibitRepository: exhibit lifecycle, feed pages, and authorization
//   - SupportRepository: per-user support toggles and supporter counts
//   - ArtifactRepository: artifacts nested under an exhibit
//   - CommentRepository: visitor comments nested under an exhibit
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple
// goroutines. The underlying pgxpool handles connection pooling and
// synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Database errors are wrapped with context using fmt.Errorf with %w.
// Common errors include:
//
//   - domain.ErrNotFound: resource does not exist
//   - domain.ErrForbidden: actor is not allowed to perform the operation
//   - domain.ErrInvalidInput: invalid parameters provided
//
// # Transactions
//
// Use the DBTX interface to support both pool and transaction contexts.
// Pass a transaction from database.DB.WithTransaction for atomic operations:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    txRepo := repository.NewPgExhibitRepository(tx)
//	    return txRepo.Delete(ctx, actor, id)
//	})
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/comic-con-museum/fan-forge/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
type DBTX = database.DBTX

// PageSize is the fixed number of exhibits in a feed page. Every feed
// request returns at most this many rows regardless of query parameters.
const PageSize = 10

// PostgreSQL error codes used for constraint violation detection.
const (
	pgForeignKeyViolation = "23503" // foreign_key_violation
)

// isPgForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}
