package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
)

// Key prefixes for aggregate entries.
const (
	PrefixAverage = "stats:average:"
	PrefixHighest = "stats:highest:"
)

// AverageKey is the cache key of a test's average score.
func AverageKey(testID int64) string {
	return PrefixAverage + strconv.FormatInt(testID, 10)
}

// HighestKey is the cache key of a test's highest scorer.
func HighestKey(testID int64) string {
	return PrefixHighest + strconv.FormatInt(testID, 10)
}

// scorerEntry is the JSON shape of a cached highest scorer.
type scorerEntry struct {
	ResultID  int64  `json:"result_id"`
	StudentID int64  `json:"student_id"`
	TestID    int64  `json:"test_id"`
	Score     int    `json:"score"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

func newScorerEntry(s grading.ScoredResult) scorerEntry {
	return scorerEntry{
		ResultID:  s.Result.ID,
		StudentID: s.Result.StudentID,
		TestID:    s.Result.TestID,
		Score:     s.Result.Score,
		Name:      s.Student.Name,
		Email:     s.Student.Email,
	}
}

func (e scorerEntry) toDomain() *grading.ScoredResult {
	return &grading.ScoredResult{
		Result:  grading.Result{ID: e.ResultID, StudentID: e.StudentID, TestID: e.TestID, Score: e.Score},
		Student: student.Student{ID: e.StudentID, Name: e.Name, Email: e.Email},
	}
}

// StatsCache implements grading.StatsCache.
type StatsCache struct {
	cache *Cache
	ttl   time.Duration
}

var _ grading.StatsCache = (*StatsCache)(nil)

// NewStatsCache creates a StatsCache whose entries live for ttl.
func NewStatsCache(cache *Cache, ttl time.Duration) *StatsCache {
	return &StatsCache{cache: cache, ttl: ttl}
}

// GetAverage returns the cached average of a test.
func (s *StatsCache) GetAverage(ctx context.Context, testID int64) (float64, bool, error) {
	var avg float64
	err := s.cache.Get(ctx, AverageKey(testID), &avg)
	if errors.Is(err, ErrCacheMiss) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return avg, true, nil
}

// SetAverage caches the average of a test.
func (s *StatsCache) SetAverage(ctx context.Context, testID int64, avg float64) error {
	return s.cache.Set(ctx, AverageKey(testID), avg, s.ttl)
}

// GetHighestScorer returns the cached highest scorer of a test.
func (s *StatsCache) GetHighestScorer(ctx context.Context, testID int64) (*grading.ScoredResult, bool, error) {
	var e scorerEntry
	err := s.cache.Get(ctx, HighestKey(testID), &e)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.toDomain(), true, nil
}

// SetHighestScorer caches the highest scorer of a test.
func (s *StatsCache) SetHighestScorer(ctx context.Context, testID int64, sr grading.ScoredResult) error {
	return s.cache.Set(ctx, HighestKey(testID), newScorerEntry(sr), s.ttl)
}

// InvalidateTest drops both aggregates of a test.
func (s *StatsCache) InvalidateTest(ctx context.Context, testID int64) error {
	return s.cache.Delete(ctx, AverageKey(testID), HighestKey(testID))
}

// InvalidateHighestScorers drops the highest scorer of every test.
func (s *StatsCache) InvalidateHighestScorers(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, PrefixHighest+"*")
}
