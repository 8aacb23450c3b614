// Package assembler composes repository reads and writes into the feed and
// detail views served over HTTP. Every operation runs inside a single
// transaction scope so counts, per-viewer flags, and row snapshots are
// mutually consistent.
package assembler

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/comic-con-museum/fan-forge/internal/domain"
	"github.com/comic-con-museum/fan-forge/internal/events"
	"github.com/comic-con-museum/fan-forge/internal/observability"
	"github.com/comic-con-museum/fan-forge/internal/repository"
)

// publishTimeout bounds the time spent handing an event to the publisher.
const publishTimeout = 5 * time.Second

// txRunner is the transaction surface the assembler needs from database.DB.
type txRunner interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
	WithReadOnlyTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// FeedEntry is one exhibit row in a feed page.
type FeedEntry struct {
	ID          int64
	Title       string
	Description string
	Featured    bool
	Created     time.Time
	Supporters  int64

	// Supported is nil for anonymous viewers; the flag only exists once
	// there is a viewer to ask about.
	Supported *bool
}

// FeedPage is one page of the exhibit feed plus the pagination envelope.
type FeedPage struct {
	StartIdx int
	Count    int64
	PageSize int
	Exhibits []FeedEntry
}

// ExhibitDetail is the full view of a single exhibit: the exhibit itself,
// its supporter count, the viewer's support flag, and the nested artifacts
// and comments.
type ExhibitDetail struct {
	Exhibit    *domain.Exhibit
	Supporters int64
	Supported  *bool
	Artifacts  []*domain.Artifact
	Comments   []*domain.Comment
}

// Assembler builds feed and detail views and coordinates exhibit mutations.
type Assembler struct {
	db        txRunner
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// New creates an Assembler.
func New(db txRunner, publisher events.Publisher, metrics *observability.Metrics, logger zerolog.Logger) *Assembler {
	return &Assembler{
		db:        db,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "assembler").Logger(),
	}
}

// Feed assembles one page of the exhibit feed. The page rows, the total
// count, the supporter counts, and the viewer's support flags all come from
// one read-only transaction, so a write landing mid-assembly cannot produce
// a page that disagrees with its own envelope.
func (a *Assembler) Feed(ctx context.Context, viewer *domain.User, feedType domain.FeedType, startIdx int) (*FeedPage, error) {
	if startIdx < 0 {
		startIdx = 0
	}

	start := time.Now()
	var page *FeedPage
	err := a.db.WithReadOnlyTransaction(ctx, func(tx pgx.Tx) error {
		exhibits := repository.NewPgExhibitRepository(tx)
		supports := repository.NewPgSupportRepository(tx)

		rows, err := exhibits.Feed(ctx, feedType, startIdx)
		if err != nil {
			return err
		}

		total, err := exhibits.Count(ctx)
		if err != nil {
			return err
		}

		ids := make([]int64, len(rows))
		for i, e := range rows {
			ids[i] = e.ID
		}

		counts, err := supports.CountByExhibits(ctx, ids)
		if err != nil {
			return err
		}

		supported, err := supports.SupportedByViewer(ctx, viewer, ids)
		if err != nil {
			return err
		}

		entries := make([]FeedEntry, len(rows))
		for i, e := range rows {
			entry := FeedEntry{
				ID:          e.ID,
				Title:       e.Title,
				Description: e.Description,
				Featured:    e.Featured,
				Created:     e.Created,
				Supporters:  counts[e.ID],
			}
			if viewer != nil {
				flag := supported[e.ID]
				entry.Supported = &flag
			}
			entries[i] = entry
		}

		page = &FeedPage{
			StartIdx: startIdx,
			Count:    total,
			PageSize: repository.PageSize,
			Exhibits: entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.metrics.FeedsServed.WithLabelValues(string(feedType)).Inc()
	a.metrics.FeedAssemblyDuration.Observe(time.Since(start).Seconds())

	return page, nil
}

// Detail assembles the full view of one exhibit inside a read-only
// transaction.
func (a *Assembler) Detail(ctx context.Context, viewer *domain.User, id int64) (*ExhibitDetail, error) {
	var detail *ExhibitDetail
	err := a.db.WithReadOnlyTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		detail, err = a.detailInTx(ctx, tx, viewer, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// detailInTx builds an ExhibitDetail within an existing transaction.
func (a *Assembler) detailInTx(ctx context.Context, tx pgx.Tx, viewer *domain.User, id int64) (*ExhibitDetail, error) {
	exhibits := repository.NewPgExhibitRepository(tx)
	supports := repository.NewPgSupportRepository(tx)
	artifacts := repository.NewPgArtifactRepository(tx)
	comments := repository.NewPgCommentRepository(tx)

	exhibit, err := exhibits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	supporters, err := supports.CountForExhibit(ctx, id)
	if err != nil {
		return nil, err
	}

	supported, err := supports.IsSupporting(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	artifactList, err := artifacts.ListForExhibit(ctx, id)
	if err != nil {
		return nil, err
	}

	commentList, err := comments.ListForExhibit(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExhibitDetail{
		Exhibit:    exhibit,
		Supporters: supporters,
		Supported:  supported,
		Artifacts:  artifactList,
		Comments:   commentList,
	}, nil
}

// Create stores a new exhibit authored by the actor and returns its ID.
// Author and Created are assigned here; the featured flag is honored only
// for admins.
func (a *Assembler) Create(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (int64, error) {
	if actor == nil {
		return 0, domain.ErrUnauthorized
	}

	exhibit.Author = actor.ID
	exhibit.Created = time.Now().UTC()
	if !actor.Admin {
		exhibit.Featured = false
	}

	err := a.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return repository.NewPgExhibitRepository(tx).Create(ctx, exhibit)
	})
	if err != nil {
		return 0, err
	}

	a.metrics.ExhibitsCreated.Inc()
	a.publish(ctx, domain.EventTypeExhibitCreated, exhibit.ID, actor.ID, exhibit.Title)

	a.logger.Info().
		Int64("exhibit_id", exhibit.ID).
		Str("author", actor.ID).
		Msg("exhibit created")

	return exhibit.ID, nil
}

// Update rewrites an exhibit's mutable fields and returns the refreshed
// detail view, read in the same transaction as the write.
func (a *Assembler) Update(ctx context.Context, actor *domain.User, exhibit *domain.Exhibit) (*ExhibitDetail, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	var detail *ExhibitDetail
	err := a.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := repository.NewPgExhibitRepository(tx).Update(ctx, actor, exhibit); err != nil {
			return err
		}

		var err error
		detail, err = a.detailInTx(ctx, tx, actor, exhibit.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.metrics.ExhibitsUpdated.Inc()
	a.publish(ctx, domain.EventTypeExhibitUpdated, exhibit.ID, actor.ID, exhibit.Title)

	updateLogger := observability.WithExhibitContext(a.logger, exhibit.ID, actor.ID)
	updateLogger.Info().Msg("exhibit updated")

	return detail, nil
}

// Delete removes an exhibit along with its supports, artifacts, and
// comments.
func (a *Assembler) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}

	err := a.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return repository.NewPgExhibitRepository(tx).Delete(ctx, actor, id)
	})
	if err != nil {
		return err
	}

	a.metrics.ExhibitsDeleted.Inc()
	a.publish(ctx, domain.EventTypeExhibitDeleted, id, actor.ID, nil)

	deleteLogger := observability.WithExhibitContext(a.logger, id, actor.ID)
	deleteLogger.Info().Msg("exhibit deleted")

	return nil
}

// Support toggles the actor's support for an exhibit on, with an optional
// survey. Returns true if the support was newly created and false if the
// actor already supported the exhibit.
func (a *Assembler) Support(ctx context.Context, actor *domain.User, exhibitID int64, survey *domain.Survey) (bool, error) {
	if actor == nil {
		return false, domain.ErrUnauthorized
	}

	var created bool
	err := a.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewPgSupportRepository(tx).Support(ctx, exhibitID, actor.ID, survey)
		return err
	})
	if err != nil {
		return false, err
	}

	if created {
		a.metrics.SupportsAdded.Inc()
		a.publish(ctx, domain.EventTypeExhibitSupported, exhibitID, actor.ID, nil)
	} else {
		a.metrics.SupportNoOps.WithLabelValues("support").Inc()
	}

	return created, nil
}

// Unsupport toggles the actor's support for an exhibit off. Returns true if
// a support existed and was removed.
func (a *Assembler) Unsupport(ctx context.Context, actor *domain.User, exhibitID int64) (bool, error) {
	if actor == nil {
		return false, domain.ErrUnauthorized
	}

	var removed bool
	err := a.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		removed, err = repository.NewPgSupportRepository(tx).Unsupport(ctx, exhibitID, actor.ID)
		return err
	})
	if err != nil {
		return false, err
	}

	if removed {
		a.metrics.SupportsRemoved.Inc()
		a.publish(ctx, domain.EventTypeExhibitUnsupported, exhibitID, actor.ID, nil)
	} else {
		a.metrics.SupportNoOps.WithLabelValues("unsupport").Inc()
	}

	return removed, nil
}

// publish hands an event to the publisher. Failures are logged, never
// propagated; events are best-effort notifications, not part of the
// operation's outcome.
func (a *Assembler) publish(ctx context.Context, eventType string, exhibitID int64, actor string, payload interface{}) {
	event, err := domain.NewEvent(eventType, exhibitID, actor, payload)
	if err != nil {
		a.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}

	// Detach from the request context so a cancelled request does not lose
	// the event for work that already committed.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := a.publisher.Publish(pubCtx, event); err != nil {
		a.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Int64("exhibit_id", exhibitID).
			Msg("failed to publish event")
	}
}
