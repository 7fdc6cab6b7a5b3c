package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/storage"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

// Repository defines the storage operations needed by handlers.
type Repository interface {
	CreateVenue(ctx context.Context, name, address string, coord *geocode.Coordinate) (*storage.Venue, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*storage.Venue, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, name, address string, coord *geocode.Coordinate) (*storage.Venue, error)

	UpsertMatchWeather(ctx context.Context, m storage.MatchWeather) (*storage.MatchWeather, error)
	GetMatchWeather(ctx context.Context, matchID uuid.UUID) (*storage.MatchWeather, error)
	ListMatchWeatherByIcon(ctx context.Context, icon weather.Icon) ([]*storage.MatchWeather, error)
}

// ResultCache defines the cache operations needed by handlers.
type ResultCache interface {
	GetCoordinates(ctx context.Context, address string) (*geocode.Coordinate, error)
	SetCoordinates(ctx context.Context, address string, coord *geocode.Coordinate) error
	DeleteCoordinates(ctx context.Context, address string) error
	GetWeather(ctx context.Context, q weather.Query) (*weather.Snapshot, error)
	SetWeather(ctx context.Context, q weather.Query, snap *weather.Snapshot) error
}

// CoordinateResolver turns an address into a location. nil means unavailable.
type CoordinateResolver interface {
	ResolveCoordinates(ctx context.Context, address string) *geocode.Coordinate
}

// WeatherResolver produces a snapshot for a query. nil means unavailable.
type WeatherResolver interface {
	ResolveWeather(ctx context.Context, q weather.Query) *weather.Snapshot
}
