// Package provider holds the pieces shared by every external enrichment
// provider: the per-attempt outcome type, the JSON GET helper and attempt
// accounting.
package provider

import (
	"time"

	"github.com/blood8879/match-archive-sub002/internal/metrics"
)

// Kind classifies a single provider attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindNoMatch
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNoMatch:
		return "no_match"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one provider attempt. Value is only
// meaningful for KindSuccess and Err only for KindError.
type Outcome[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// Success wraps a usable payload.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Kind: KindSuccess, Value: v}
}

// NoMatch reports a well-formed response that contained nothing usable.
func NoMatch[T any]() Outcome[T] {
	return Outcome[T]{Kind: KindNoMatch}
}

// Failure reports a provider that did not answer usefully (transport error,
// non-2xx status, malformed body).
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: KindError, Err: err}
}

// Ok reports whether the attempt produced a usable payload.
func (o Outcome[T]) Ok() bool {
	return o.Kind == KindSuccess
}

// Record counts one finished attempt for the named provider.
func Record(name string, kind Kind, elapsed time.Duration) {
	metrics.ProviderCallsTotal.WithLabelValues(name, kind.String()).Inc()
	metrics.ProviderLatency.WithLabelValues(name).Observe(elapsed.Seconds())
}
