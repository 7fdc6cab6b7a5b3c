package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcharchive_provider_calls_total",
			Help: "Total external provider attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matcharchive_provider_latency_seconds",
			Help:    "External provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcharchive_resolutions_total",
			Help: "Total resolver calls by result (resolved, unavailable, rejected)",
		},
		[]string{"resolver", "result"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcharchive_cache_lookups_total",
			Help: "Total enrichment cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)
)
