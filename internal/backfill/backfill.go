// Package backfill geocodes stored venues that have no coordinates yet.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/storage"
)

// Store is the subset of storage.Repository the backfill needs.
type Store interface {
	ListVenuesMissingCoordinates(ctx context.Context, after *storage.VenueCursor, limit int) ([]*storage.Venue, error)
	UpdateVenueCoordinates(ctx context.Context, id uuid.UUID, coord geocode.Coordinate) error
}

// Resolver turns an address into a location. nil means unavailable.
type Resolver interface {
	ResolveCoordinates(ctx context.Context, address string) *geocode.Coordinate
}

// Options tunes a backfill run. Zero values fall back to one worker, batches
// of 50 and no rate limit.
type Options struct {
	BatchSize int
	Workers   int
	// Interval is the minimum spacing between lookups across all workers.
	// Zero disables the limit.
	Interval time.Duration
	// DryRun resolves addresses without writing coordinates.
	DryRun bool
}

// Stats counts what a run did.
type Stats struct {
	Batches    int
	Attempted  int
	Resolved   int
	Unresolved int
}

// Backfiller pages through venues without coordinates and geocodes them.
type Backfiller struct {
	store    Store
	resolver Resolver
	limiter  *rate.Limiter
	opts     Options
	log      *slog.Logger
}

// New returns a Backfiller. log must not be nil.
func New(store Store, resolver Resolver, opts Options, log *slog.Logger) *Backfiller {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Backfiller{
		store:    store,
		resolver: resolver,
		limiter:  rate.NewLimiter(limit, 1),
		opts:     opts,
		log:      log,
	}
}

// Run walks every venue missing coordinates once, oldest first, until the
// listing is exhausted or ctx is cancelled. Venues that stay unresolved are
// paged past, so they never block newer ones.
func (b *Backfiller) Run(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		after *storage.VenueCursor
	)

	for {
		venues, err := b.store.ListVenuesMissingCoordinates(ctx, after, b.opts.BatchSize)
		if err != nil {
			return stats, fmt.Errorf("listing venues: %w", err)
		}
		if len(venues) == 0 {
			return stats, nil
		}

		resolved, err := b.runBatch(ctx, venues)
		stats.Batches++
		stats.Attempted += len(venues)
		stats.Resolved += resolved
		stats.Unresolved += len(venues) - resolved
		if err != nil {
			return stats, err
		}

		b.log.Info("batch done", "batch", stats.Batches, "venues", len(venues), "resolved", resolved)

		last := venues[len(venues)-1]
		after = &storage.VenueCursor{CreatedAt: last.CreatedAt, ID: last.ID}
		if len(venues) < b.opts.BatchSize {
			return stats, nil
		}
	}
}

func (b *Backfiller) runBatch(ctx context.Context, venues []*storage.Venue) (int, error) {
	var resolved atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for _, v := range venues {
		g.Go(func() error {
			if err := b.limiter.Wait(gctx); err != nil {
				return err
			}

			coord := b.resolver.ResolveCoordinates(gctx, v.Address)
			if coord == nil {
				b.log.Info("venue address unresolved", "venue_id", v.ID, "address", v.Address)
				return nil
			}
			if b.opts.DryRun {
				b.log.Info("dry run: would update venue", "venue_id", v.ID, "lat", coord.Latitude, "lon", coord.Longitude)
				resolved.Add(1)
				return nil
			}
			if err := b.store.UpdateVenueCoordinates(gctx, v.ID, *coord); err != nil {
				return fmt.Errorf("updating venue %s: %w", v.ID, err)
			}
			resolved.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(resolved.Load()), err
}
