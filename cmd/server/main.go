package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blood8879/match-archive-sub002/internal/api"
	"github.com/blood8879/match-archive-sub002/internal/cache"
	"github.com/blood8879/match-archive-sub002/internal/config"
	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/provider"
	"github.com/blood8879/match-archive-sub002/internal/storage"
	"github.com/blood8879/match-archive-sub002/internal/weather"
)

const connectTimeout = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Connect to PostgreSQL.
	pool, err := storage.ConnectWithRetry(ctx, cfg.DatabaseURL, connectTimeout)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", "dir", cfg.MigrationsDir)

	// Connect to Redis.
	redisClient, err := cache.ConnectWithRetry(ctx, cfg.RedisURL, connectTimeout)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire dependencies.
	httpClient := provider.NewHTTPClient(cfg.HTTPTimeout)
	if cfg.KakaoAPIKey == "" {
		log.Warn("KAKAO_REST_API_KEY not set, geocoding falls back to Nominatim only")
	}
	geocoder := geocode.NewResolver(
		geocode.NewKakaoClient(cfg.KakaoAPIKey, httpClient),
		geocode.NewNominatimClient(cfg.NominatimUserAgent, httpClient),
		log.With("component", "geocode"),
	)
	forecaster := weather.NewResolver(
		weather.NewOpenMeteoClient(cfg.WeatherTimezone, httpClient),
		loc,
		log.With("component", "weather"),
	)

	repo := storage.NewRepository(pool)
	cacheLayer := cache.NewCache(redisClient, cfg.GeocodeCacheTTL, cfg.WeatherCacheTTL)
	handlers := api.NewHandlers(repo, cacheLayer, geocoder, forecaster, log)

	router := api.NewRouter(handlers, cfg.BearerToken, pool, &redisPingerAdapter{client: redisClient}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port, "timezone", cfg.WeatherTimezone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// redisPingerAdapter adapts redis.Client to the api.redisPinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
