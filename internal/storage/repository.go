package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

// ErrNotFound is returned by write operations whose target row does not exist.
var ErrNotFound = errors.New("not found")

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for venues and match weather.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const venueColumns = `id, name, address, latitude, longitude, created_at, updated_at`

func scanVenue(row pgx.Row) (*Venue, error) {
	var v Venue
	if err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Address,
		&v.Latitude,
		&v.Longitude,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVenue inserts a venue with a fresh id. coord may be nil.
func (r *Repository) CreateVenue(ctx context.Context, name, address string, coord *geocode.Coordinate) (*Venue, error) {
	lat, lon := coordinateArgs(coord)

	const q = `
		INSERT INTO venues (id, name, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + venueColumns

	v, err := scanVenue(r.q.QueryRow(ctx, q, uuid.New(), name, address, lat, lon))
	if err != nil {
		return nil, fmt.Errorf("inserting venue %q: %w", name, err)
	}
	return v, nil
}

// GetVenue retrieves a venue by id.
// Returns nil, nil when the venue does not exist.
func (r *Repository) GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	const q = `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`

	v, err := scanVenue(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying venue %s: %w", id, err)
	}
	return v, nil
}

// UpdateVenue replaces the name, address and coordinates of a venue.
// Returns nil, nil when the venue does not exist.
func (r *Repository) UpdateVenue(ctx context.Context, id uuid.UUID, name, address string, coord *geocode.Coordinate) (*Venue, error) {
	lat, lon := coordinateArgs(coord)

	const q = `
		UPDATE venues
		SET name       = $2,
		    address    = $3,
		    latitude   = $4,
		    longitude  = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + venueColumns

	v, err := scanVenue(r.q.QueryRow(ctx, q, id, name, address, lat, lon))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("updating venue %s: %w", id, err)
	}
	return v, nil
}

// VenueCursor marks a position in the created_at, id ordering of venues.
type VenueCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// ListVenuesMissingCoordinates returns up to limit venues that were never
// geocoded, oldest first. When after is non-nil only venues ordered strictly
// after it are returned, so callers can page past venues that stay
// unresolved.
func (r *Repository) ListVenuesMissingCoordinates(ctx context.Context, after *VenueCursor, limit int) ([]*Venue, error) {
	const q = `
		SELECT ` + venueColumns + `
		FROM venues
		WHERE latitude IS NULL
		  AND ($1::timestamptz IS NULL OR (created_at, id) > ($1::timestamptz, $2::uuid))
		ORDER BY created_at, id
		LIMIT $3
	`

	var afterAt *time.Time
	var afterID *uuid.UUID
	if after != nil {
		afterAt, afterID = &after.CreatedAt, &after.ID
	}

	rows, err := r.q.Query(ctx, q, afterAt, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying venues missing coordinates: %w", err)
	}
	defer rows.Close()

	var results []*Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning venue row: %w", err)
		}
		results = append(results, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating venue rows: %w", err)
	}

	return results, nil
}

// UpdateVenueCoordinates stores a resolved location for a venue.
func (r *Repository) UpdateVenueCoordinates(ctx context.Context, id uuid.UUID, coord geocode.Coordinate) error {
	const q = `
		UPDATE venues
		SET latitude = $2, longitude = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, q, id, coord.Latitude, coord.Longitude)
	if err != nil {
		return fmt.Errorf("updating coordinates for venue %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating coordinates for venue %s: %w", id, ErrNotFound)
	}
	return nil
}

const matchWeatherColumns = `match_id, venue_id, match_date, match_hour, snapshot, fetched_at, created_at, updated_at`

func scanMatchWeather(row pgx.Row) (*MatchWeather, error) {
	var (
		m            MatchWeather
		snapshotJSON []byte
	)
	if err := row.Scan(
		&m.MatchID,
		&m.VenueID,
		&m.MatchDate,
		&m.MatchHour,
		&snapshotJSON,
		&m.FetchedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshotJSON, &m.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot for match %s: %w", m.MatchID, err)
	}
	return &m, nil
}

// UpsertMatchWeather inserts or replaces the weather stored for a match.
// On conflict (match_id), the venue, date, hour and snapshot are overwritten.
func (r *Repository) UpsertMatchWeather(ctx context.Context, m MatchWeather) (*MatchWeather, error) {
	snapshotJSON, err := json.Marshal(m.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot for match %s: %w", m.MatchID, err)
	}

	const q = `
		INSERT INTO match_weather (match_id, venue_id, match_date, match_hour, snapshot, fetched_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, NOW(), NOW())
		ON CONFLICT (match_id) DO UPDATE
		SET venue_id   = EXCLUDED.venue_id,
		    match_date = EXCLUDED.match_date,
		    match_hour = EXCLUDED.match_hour,
		    snapshot   = EXCLUDED.snapshot,
		    fetched_at = EXCLUDED.fetched_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + matchWeatherColumns

	row := r.q.QueryRow(ctx, q, m.MatchID, m.VenueID, m.MatchDate.Format(weather.DateLayout), m.MatchHour, snapshotJSON)
	stored, err := scanMatchWeather(row)
	if err != nil {
		return nil, fmt.Errorf("upserting weather for match %s: %w", m.MatchID, err)
	}
	return stored, nil
}

// GetMatchWeather retrieves the stored weather for a match.
// Returns nil, nil when nothing is stored.
func (r *Repository) GetMatchWeather(ctx context.Context, matchID uuid.UUID) (*MatchWeather, error) {
	const q = `SELECT ` + matchWeatherColumns + ` FROM match_weather WHERE match_id = $1`

	m, err := scanMatchWeather(r.q.QueryRow(ctx, q, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying weather for match %s: %w", matchID, err)
	}
	return m, nil
}

// ListMatchWeatherByIcon returns stored snapshots with the given icon, newest
// match first. Uses the JSONB @> containment operator.
func (r *Repository) ListMatchWeatherByIcon(ctx context.Context, icon weather.Icon) ([]*MatchWeather, error) {
	filter, err := json.Marshal(map[string]any{"icon": icon})
	if err != nil {
		return nil, fmt.Errorf("marshaling JSONB filter: %w", err)
	}

	const q = `
		SELECT ` + matchWeatherColumns + `
		FROM match_weather
		WHERE snapshot @> $1::jsonb
		ORDER BY match_date DESC, match_hour DESC
	`

	rows, err := r.q.Query(ctx, q, string(filter))
	if err != nil {
		return nil, fmt.Errorf("querying match weather by icon: %w", err)
	}
	defer rows.Close()

	var results []*MatchWeather
	for rows.Next() {
		m, err := scanMatchWeather(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match weather row: %w", err)
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match weather rows: %w", err)
	}

	return results, nil
}
