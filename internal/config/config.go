package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the server and the backfill command read from the
// environment.
type Config struct {
	DatabaseURL string `validate:"required"`
	RedisURL    string `validate:"required"`
	BearerToken string `validate:"required"`
	Port        string `validate:"required,numeric"`

	// KakaoAPIKey is optional; without it the Kakao geocoder is skipped.
	KakaoAPIKey        string
	NominatimUserAgent string `validate:"required"`

	WeatherTimezone string        `validate:"required"`
	HTTPTimeout     time.Duration `validate:"gt=0"`
	GeocodeCacheTTL time.Duration `validate:"gt=0"`
	WeatherCacheTTL time.Duration `validate:"gt=0"`

	MigrationsDir string `validate:"required"`
	LogLevel      string `validate:"oneof=debug info warn error"`
}

// serverOnly lists the fields only the HTTP server needs.
var serverOnly = []string{"RedisURL", "BearerToken", "Port"}

// Load reads an optional .env file, then the environment, and validates the
// result for the HTTP server. Variables already set in the environment win
// over .env entries.
func Load() (*Config, error) {
	return load()
}

// LoadBackfill is Load for the venue backfill command, which talks only to
// PostgreSQL and the geocoders. The server-only fields are not validated.
func LoadBackfill() (*Config, error) {
	return load(serverOnly...)
}

func load(skip ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		BearerToken:        os.Getenv("BEARER_TOKEN"),
		Port:               getEnv("PORT", "8080"),
		KakaoAPIKey:        strings.TrimSpace(os.Getenv("KAKAO_REST_API_KEY")),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "match-archive/1.0"),
		WeatherTimezone:    getEnv("WEATHER_TIMEZONE", "Asia/Seoul"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = getDuration("GEOCODE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheTTL, err = getDuration("WEATHER_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	if err := validator.New().StructExcept(cfg, skip...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Location loads the IANA zone used to decide "today" for weather lookups.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.WeatherTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %s: %w", c.WeatherTimezone, err)
	}
	return loc, nil
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
