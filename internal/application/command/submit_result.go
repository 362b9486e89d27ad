package command

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT RESULT COMMAND
// Records one attempt of a student at a test. The score is stored as given,
// even above the test's max_score.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitResultCommand contains the result to record.
type SubmitResultCommand struct {
	StudentID int64
	TestID    int64
	Score     int
}

// SubmitResultHandler handles the SubmitResultCommand.
type SubmitResultHandler struct {
	results grading.ResultRepository
	cache   grading.StatsCache // optional
}

// NewSubmitResultHandler creates a new SubmitResultHandler. cache may be nil.
func NewSubmitResultHandler(results grading.ResultRepository, cache grading.StatsCache) *SubmitResultHandler {
	return &SubmitResultHandler{results: results, cache: cache}
}

// Handle stores the result and drops the cached aggregates of its test.
// Returns ErrUnknownStudent or ErrUnknownTest when a reference is missing.
func (h *SubmitResultHandler) Handle(ctx context.Context, cmd SubmitResultCommand) (*Result, error) {
	res := &grading.Result{StudentID: cmd.StudentID, TestID: cmd.TestID, Score: cmd.Score}
	if err := h.results.Submit(ctx, res); err != nil {
		return nil, fmt.Errorf("submit_result: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.InvalidateTest(ctx, cmd.TestID); err != nil {
			logger.FromContext(ctx).Warn("stats cache invalidation failed",
				logger.Operation("submit_result"),
				logger.TestID(cmd.TestID),
				logger.Err(err),
			)
		}
	}

	return &Result{Message: MsgResultCreated}, nil
}
