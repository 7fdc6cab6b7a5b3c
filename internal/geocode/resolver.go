package geocode

import (
	"context"
	"log/slog"
	"strings"

	"github.com/blood8879/match-archive-sub002/internal/metrics"
	"github.com/blood8879/match-archive-sub002/internal/provider"
)

// geocoder is implemented by the clients in this package only; the chain is
// a closed set.
type geocoder interface {
	name() string
	available() bool
	lookup(ctx context.Context, address string) provider.Outcome[Coordinate]
}

// Resolver turns addresses into coordinates by trying its providers strictly
// in priority order.
type Resolver struct {
	chain []geocoder
	log   *slog.Logger
}

// NewResolver builds the fixed chain: Kakao first (skipped when it has no
// key or is nil), then Nominatim.
func NewResolver(kakao *KakaoClient, nominatim *NominatimClient, log *slog.Logger) *Resolver {
	return &Resolver{
		chain: []geocoder{kakao, nominatim},
		log:   log,
	}
}

// ResolveCoordinates returns the first provider match for address, or nil
// when the address is blank or no provider produced one. It never fails.
func (r *Resolver) ResolveCoordinates(ctx context.Context, address string) *Coordinate {
	address = strings.TrimSpace(address)
	if address == "" {
		metrics.ResolutionsTotal.WithLabelValues("geocode", "rejected").Inc()
		return nil
	}

	for _, g := range r.chain {
		if !g.available() {
			r.log.Debug("geocode provider not configured, skipping", "provider", g.name())
			continue
		}

		out := g.lookup(ctx, address)
		switch out.Kind {
		case provider.KindSuccess:
			metrics.ResolutionsTotal.WithLabelValues("geocode", "resolved").Inc()
			coord := out.Value
			return &coord
		case provider.KindNoMatch:
			r.log.Info("geocode provider found no match", "provider", g.name(), "address", address)
		default:
			r.log.Warn("geocode provider failed", "provider", g.name(), "address", address, "err", out.Err)
		}
	}

	metrics.ResolutionsTotal.WithLabelValues("geocode", "unavailable").Inc()
	return nil
}
