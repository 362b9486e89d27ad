package redis

import (
	"context"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/circuitbreaker"
)

// GuardedStatsCache puts a circuit breaker in front of cache reads and
// writes. While the breaker is open they fail fast with
// circuitbreaker.ErrOpen and the caller computes from storage.
//
// Invalidations bypass the breaker: skipping one could leave a stale
// aggregate behind once Redis is back.
type GuardedStatsCache struct {
	inner   grading.StatsCache
	breaker *circuitbreaker.Breaker
}

var _ grading.StatsCache = (*GuardedStatsCache)(nil)

// NewGuardedStatsCache wraps inner with breaker.
func NewGuardedStatsCache(inner grading.StatsCache, breaker *circuitbreaker.Breaker) *GuardedStatsCache {
	return &GuardedStatsCache{inner: inner, breaker: breaker}
}

func (g *GuardedStatsCache) GetAverage(ctx context.Context, testID int64) (avg float64, ok bool, err error) {
	err = g.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		avg, ok, innerErr = g.inner.GetAverage(ctx, testID)
		return innerErr
	})
	return avg, ok, err
}

func (g *GuardedStatsCache) SetAverage(ctx context.Context, testID int64, avg float64) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.SetAverage(ctx, testID, avg)
	})
}

func (g *GuardedStatsCache) GetHighestScorer(ctx context.Context, testID int64) (sr *grading.ScoredResult, ok bool, err error) {
	err = g.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		sr, ok, innerErr = g.inner.GetHighestScorer(ctx, testID)
		return innerErr
	})
	return sr, ok, err
}

func (g *GuardedStatsCache) SetHighestScorer(ctx context.Context, testID int64, sr grading.ScoredResult) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.SetHighestScorer(ctx, testID, sr)
	})
}

func (g *GuardedStatsCache) InvalidateTest(ctx context.Context, testID int64) error {
	return g.inner.InvalidateTest(ctx, testID)
}

func (g *GuardedStatsCache) InvalidateHighestScorers(ctx context.Context) error {
	return g.inner.InvalidateHighestScorers(ctx)
}
