package memory

import (
	"context"
	"sync"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
)

// StatsCache is an in-process grading.StatsCache without expiry. It stands
// in for Redis in tests.
type StatsCache struct {
	mu       sync.Mutex
	averages map[int64]float64
	highest  map[int64]grading.ScoredResult
	hits     int
}

var _ grading.StatsCache = (*StatsCache)(nil)

// NewStatsCache creates an empty cache.
func NewStatsCache() *StatsCache {
	return &StatsCache{
		averages: make(map[int64]float64),
		highest:  make(map[int64]grading.ScoredResult),
	}
}

func (c *StatsCache) GetAverage(ctx context.Context, testID int64) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	avg, ok := c.averages[testID]
	if ok {
		c.hits++
	}
	return avg, ok, nil
}

func (c *StatsCache) SetAverage(ctx context.Context, testID int64, avg float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.averages[testID] = avg
	return nil
}

func (c *StatsCache) GetHighestScorer(ctx context.Context, testID int64) (*grading.ScoredResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sr, ok := c.highest[testID]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &sr, true, nil
}

func (c *StatsCache) SetHighestScorer(ctx context.Context, testID int64, sr grading.ScoredResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.highest[testID] = sr
	return nil
}

func (c *StatsCache) InvalidateTest(ctx context.Context, testID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.averages, testID)
	delete(c.highest, testID)
	return nil
}

func (c *StatsCache) InvalidateHighestScorers(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.highest = make(map[int64]grading.ScoredResult)
	return nil
}

// Cached reports whether any aggregate of the test is cached.
func (c *StatsCache) Cached(testID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, a := c.averages[testID]
	_, h := c.highest[testID]
	return a || h
}

// Hits returns how many lookups were answered from the cache.
func (c *StatsCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits
}
