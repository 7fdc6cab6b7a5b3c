package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/metrics"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

const (
	defaultGeocodeTTL = 24 * time.Hour
	defaultWeatherTTL = time.Hour
)

// Cache stores resolved coordinates and weather snapshots in Redis. Only
// successful resolutions are ever written.
type Cache struct {
	client     *redis.Client
	geocodeTTL time.Duration
	weatherTTL time.Duration
}

// NewCache constructs a Cache. Non-positive TTLs fall back to 24h for
// coordinates and 1h for weather.
func NewCache(client *redis.Client, geocodeTTL, weatherTTL time.Duration) *Cache {
	if geocodeTTL <= 0 {
		geocodeTTL = defaultGeocodeTTL
	}
	if weatherTTL <= 0 {
		weatherTTL = defaultWeatherTTL
	}
	return &Cache{client: client, geocodeTTL: geocodeTTL, weatherTTL: weatherTTL}
}

func coordinatesKey(address string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(address))
}

func weatherKey(q weather.Query) string {
	return fmt.Sprintf("weather:%s,%s:%s:%d",
		strconv.FormatFloat(q.Coordinate.Latitude, 'f', 4, 64),
		strconv.FormatFloat(q.Coordinate.Longitude, 'f', 4, 64),
		q.Date.Format(weather.DateLayout),
		q.Hour,
	)
}

// GetCoordinates returns the cached coordinate for address.
// Returns nil, nil on a cache miss.
func (c *Cache) GetCoordinates(ctx context.Context, address string) (*geocode.Coordinate, error) {
	var coord geocode.Coordinate
	ok, err := c.get(ctx, "geocode", coordinatesKey(address), &coord)
	if err != nil || !ok {
		return nil, err
	}
	return &coord, nil
}

// SetCoordinates caches coord for address. A nil coord is not cached.
func (c *Cache) SetCoordinates(ctx context.Context, address string, coord *geocode.Coordinate) error {
	if coord == nil {
		return nil
	}
	return c.set(ctx, coordinatesKey(address), coord, c.geocodeTTL)
}

// DeleteCoordinates removes the cached entry for address.
func (c *Cache) DeleteCoordinates(ctx context.Context, address string) error {
	if err := c.client.Del(ctx, coordinatesKey(address)).Err(); err != nil {
		return fmt.Errorf("cache delete for address %q: %w", address, err)
	}
	return nil
}

// GetWeather returns the cached snapshot for q.
// Returns nil, nil on a cache miss.
func (c *Cache) GetWeather(ctx context.Context, q weather.Query) (*weather.Snapshot, error) {
	var snap weather.Snapshot
	ok, err := c.get(ctx, "weather", weatherKey(q), &snap)
	if err != nil || !ok {
		return nil, err
	}
	return &snap, nil
}

// SetWeather caches snap for q. A nil snap is not cached.
func (c *Cache) SetWeather(ctx context.Context, q weather.Query, snap *weather.Snapshot) error {
	if snap == nil {
		return nil
	}
	return c.set(ctx, weatherKey(q), snap, c.weatherTTL)
}

func (c *Cache) get(ctx context.Context, kind, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheLookupsTotal.WithLabelValues(kind, "miss").Inc()
			return false, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues(kind, "error").Inc()
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues(kind, "error").Inc()
		return false, fmt.Errorf("unmarshaling cached value %s: %w", key, err)
	}
	metrics.CacheLookupsTotal.WithLabelValues(kind, "hit").Inc()
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling value for %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
