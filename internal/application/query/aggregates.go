package query

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// Average score and highest scorer of a test, read through the optional
// stats cache. A cache error is logged and the aggregate is computed from
// storage instead. Empty outcomes are never cached.
// ══════════════════════════════════════════════════════════════════════════════

// AverageDTO carries the rendered average message.
type AverageDTO struct {
	Message string `json:"message"`
}

// AggregatesHandler computes per-test aggregates.
type AggregatesHandler struct {
	results grading.ResultRepository
	cache   grading.StatsCache // optional
}

// NewAggregatesHandler creates a new AggregatesHandler. cache may be nil.
func NewAggregatesHandler(results grading.ResultRepository, cache grading.StatsCache) *AggregatesHandler {
	return &AggregatesHandler{results: results, cache: cache}
}

// AverageScore returns "Average score for test ID <id> is <avg>".
// Returns grading.ErrNoResults when the test has no results.
func (h *AggregatesHandler) AverageScore(ctx context.Context, testID int64) (*AverageDTO, error) {
	log := logger.FromContext(ctx).With(logger.Operation("average_score"), logger.TestID(testID))

	if h.cache != nil {
		avg, ok, err := h.cache.GetAverage(ctx, testID)
		if err != nil {
			log.Warn("stats cache read failed", logger.Err(err))
		} else if ok {
			return &AverageDTO{Message: grading.AverageMessage(testID, avg)}, nil
		}
	}

	results, err := h.results.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("average_score: %w", err)
	}

	avg, err := grading.AverageScore(results)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.SetAverage(ctx, testID, avg); err != nil {
			log.Warn("stats cache write failed", logger.Err(err))
		}
	}

	return &AverageDTO{Message: grading.AverageMessage(testID, avg)}, nil
}

// HighestScorer returns the student holding the first strictly highest
// positive score of the test. Returns grading.ErrNoScorer when there is none.
func (h *AggregatesHandler) HighestScorer(ctx context.Context, testID int64) (*StudentDTO, error) {
	log := logger.FromContext(ctx).With(logger.Operation("highest_scorer"), logger.TestID(testID))

	if h.cache != nil {
		sr, ok, err := h.cache.GetHighestScorer(ctx, testID)
		if err != nil {
			log.Warn("stats cache read failed", logger.Err(err))
		} else if ok {
			dto := newStudentDTO(&sr.Student)
			return &dto, nil
		}
	}

	scored, err := h.results.ListScoredByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("highest_scorer: %w", err)
	}

	top, err := grading.HighestScorer(scored)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.SetHighestScorer(ctx, testID, top); err != nil {
			log.Warn("stats cache write failed", logger.Err(err))
		}
	}

	dto := newStudentDTO(&top.Student)
	return &dto, nil
}
