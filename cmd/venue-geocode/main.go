package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/blood8879/match-archive-sub002/internal/backfill"
	"github.com/blood8879/match-archive-sub002/internal/config"
	"github.com/blood8879/match-archive-sub002/internal/geocode"
	"github.com/blood8879/match-archive-sub002/internal/provider"
	"github.com/blood8879/match-archive-sub002/internal/storage"
)

var cli struct {
	BatchSize int           `help:"Venues fetched per batch." default:"50"`
	Workers   int           `help:"Concurrent lookups." default:"2"`
	Interval  time.Duration `help:"Minimum spacing between provider lookups (Nominatim allows one per second)." default:"1s"`
	DryRun    bool          `help:"Resolve addresses but do not write coordinates."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("venue-geocode"),
		kong.Description("Geocode stored venues that have no coordinates."),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadBackfill()
	if err != nil {
		slog.Error("loading configuration", "err", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := run(cfg, log); err != nil {
		log.Error("venue geocode failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := storage.ConnectWithRetry(ctx, cfg.DatabaseURL, 30*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	httpClient := provider.NewHTTPClient(cfg.HTTPTimeout)
	resolver := geocode.NewResolver(
		geocode.NewKakaoClient(cfg.KakaoAPIKey, httpClient),
		geocode.NewNominatimClient(cfg.NominatimUserAgent, httpClient),
		log,
	)

	b := backfill.New(storage.NewRepository(pool), resolver, backfill.Options{
		BatchSize: cli.BatchSize,
		Workers:   cli.Workers,
		Interval:  cli.Interval,
		DryRun:    cli.DryRun,
	}, log)

	start := time.Now()
	stats, err := b.Run(ctx)
	log.Info("venue geocode finished",
		"batches", stats.Batches,
		"attempted", stats.Attempted,
		"resolved", stats.Resolved,
		"unresolved", stats.Unresolved,
		"dry_run", cli.DryRun,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return err
}
